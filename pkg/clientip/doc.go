// Package clientip resolves the client IP address behind reverse proxies.
//
// Spoofable headers are a fact of life here: anything in X-Forwarded-For or
// X-Real-IP is only as trustworthy as the proxy that set it. The resolved
// address is used for audit records, never for authorization decisions.
package clientip
