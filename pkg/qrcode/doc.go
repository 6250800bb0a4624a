// Package qrcode renders strings as PNG QR codes.
//
// Its single consumer in this module is MFA enrollment, where the
// otpauth:// provisioning URI is shown to the user as a scannable image.
// DataURL wraps the PNG in a data:image/png URL so callers can embed it
// directly without serving a separate image endpoint.
package qrcode
