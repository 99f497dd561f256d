// Package mqtt provides the MQTT publishing channel for ShadeSync Core.
//
// Commands accepted by the admission policy are published to
// shadesync/command/{serial} for a future device-facing controller.
// Actual hardware actuation is out of scope for the core: if no broker is
// configured or the publish fails, the command is still logged and the
// failure is swallowed by the caller.
//
// The client maintains a Last Will and Testament on shadesync/system/status
// so consumers can distinguish a crash from a graceful shutdown.
package mqtt
