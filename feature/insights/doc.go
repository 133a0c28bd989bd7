// Package insights serves read-only dashboard aggregations over the synced
// data of the authenticated tenant. Days are UTC calendar days.
//
//   - GET /api/insights/overview
//   - GET /api/insights/orders-by-date?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
//   - GET /api/insights/top-customers?limit=5
//   - GET /api/insights/revenue-trend?period=7d|30d|90d
package insights
