// Package device implements the shade registry and the operating-mode
// resolver.
//
// Devices are provisioned ahead of time with a unique serial number and
// no owner. A user claims a device by serial; claiming is first-come and
// idempotent for the same owner, and the original registration timestamp
// is never overwritten by later claims.
//
// A device's operating mode lives in two places: the authoritative
// columns on the device row, and a fallback record in device_modes that
// is written through on every explicit change. The resolver reconciles
// the two on read and degrades an expired manual hold back to auto,
// persisting the degradation so repeated reads are stable.
package device
