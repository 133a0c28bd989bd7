// Package shopify is the client for the Shopify Admin REST API used by the
// sync engine. It wraps github.com/bold-commerce/go-shopify and implements
// reconcile.Source.
//
// Each call builds a go-shopify client for the tenant's shop domain and access
// token, requests one page (limit = Config.PageSize) and returns the page_info
// cursor of the next page taken from the Link header. Orders are always
// requested with status=any.
//
// Failures are translated:
//   - a non-2xx response becomes *reconcile.UpstreamError (status, reason phrase, message)
//   - anything else (dial, timeout, decoding) becomes *reconcile.TransportError
//
// The client does not retry.
package shopify
