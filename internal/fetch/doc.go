// Package fetch is the HTTP transport used for both the catalog index and
// item pages.
//
// A Client wraps a resty client configured once per run: browser-like
// User-Agent, an Accept header, optional site headers and cookie, a request
// timeout and a cap on how much of a response body is read. Bodies are
// decoded to UTF-8 using the declared or sniffed charset and parsed into a
// goquery document.
//
// Nothing in this package retries. A failed request is reported once as an
// *Error and the caller decides what to do with it.
package fetch
