package command

import (
	"context"
	"encoding/json"

	"github.com/shadesync/shadesync-core/internal/audit"
	"github.com/shadesync/shadesync-core/internal/device"
	"github.com/shadesync/shadesync-core/internal/infrastructure/logging"
	"github.com/shadesync/shadesync-core/internal/infrastructure/mqtt"
)

// ModeResolver answers the device's effective mode at admission time.
type ModeResolver interface {
	Resolve(ctx context.Context, d *device.Device) (*device.EffectiveMode, error)
}

// ScheduleGate reports whether schedule-sourced commands may run for a
// device today.
type ScheduleGate interface {
	IsActiveToday(ctx context.Context, deviceID string) (bool, error)
}

// Dispatcher forwards an accepted command towards the device. Dispatch
// is a placeholder for a future controller; failures are swallowed.
type Dispatcher interface {
	PublishJSON(topic string, payload []byte) error
}

// Recorder mirrors command events to the telemetry store.
type Recorder interface {
	WriteCommandEvent(deviceID, action, source, mode string)
}

// Service admits, logs, and fans out shade commands.
type Service struct {
	commands   Repository
	resolver   ModeResolver
	schedules  ScheduleGate
	auditor    audit.Repository
	dispatcher Dispatcher
	recorder   Recorder
	log        *logging.Logger
}

// NewService creates a command service. dispatcher and recorder may be
// nil when MQTT or the telemetry mirror are disabled; auditor may not.
func NewService(
	commands Repository,
	resolver ModeResolver,
	schedules ScheduleGate,
	auditor audit.Repository,
	dispatcher Dispatcher,
	recorder Recorder,
	log *logging.Logger,
) *Service {
	return &Service{
		commands:   commands,
		resolver:   resolver,
		schedules:  schedules,
		auditor:    auditor,
		dispatcher: dispatcher,
		recorder:   recorder,
		log:        log,
	}
}

// Issue runs a command through admission and appends it to the log.
//
// Manual (and any other non-schedule) sources are always admitted.
// Schedule-sourced commands pass a single gate that composes the manual
// hold and the schedule's own activation: a manual hold, a disabled
// schedule, or a skipped day each refuse the command.
//
// The append is the operation; audit, dispatch, and telemetry are
// best-effort side effects whose failures are logged and swallowed.
func (s *Service) Issue(ctx context.Context, d *device.Device, action, source, issuedBy string) (*Command, error) {
	if !validAction(action) {
		return nil, ErrInvalidAction
	}
	if source == "" {
		source = SourceManual
	}

	effective, err := s.resolver.Resolve(ctx, d)
	if err != nil {
		return nil, err
	}

	if source == SourceSchedule {
		if err := s.admitScheduleCommand(ctx, d.ID, effective); err != nil {
			return nil, err
		}
	}

	cmd := &Command{
		DeviceID: d.ID,
		Action:   action,
		Mode:     string(effective.Mode),
		Source:   source,
		Status:   StatusPending,
		IssuedBy: issuedBy,
	}
	if err := s.commands.Append(ctx, cmd); err != nil {
		return nil, err
	}

	s.log.Info("command issued",
		"command_id", cmd.ID,
		"device_id", d.ID,
		"action", action,
		"source", source,
		"mode", cmd.Mode,
	)

	s.auditCommand(ctx, cmd)
	s.dispatchCommand(d, cmd)
	if s.recorder != nil {
		s.recorder.WriteCommandEvent(d.ID, action, source, cmd.Mode)
	}

	return cmd, nil
}

// Recent returns a device's latest log entries, newest first.
func (s *Service) Recent(ctx context.Context, deviceID string, limit int) ([]Command, error) {
	return s.commands.ListByDevice(ctx, deviceID, limit)
}

// admitScheduleCommand is the unified gate for schedule-sourced
// commands. The manual hold is checked first so its conflict wins when
// both conditions apply, but either alone refuses admission.
func (s *Service) admitScheduleCommand(ctx context.Context, deviceID string, effective *device.EffectiveMode) error {
	if effective.Mode == device.ModeManual {
		return ErrManualHold
	}

	active, err := s.schedules.IsActiveToday(ctx, deviceID)
	if err != nil {
		return err
	}
	if !active {
		return ErrScheduleInactive
	}

	return nil
}

// auditCommand records the command in the audit trail, best-effort.
func (s *Service) auditCommand(ctx context.Context, cmd *Command) {
	err := s.auditor.Create(ctx, &audit.Entry{
		Action:     "command",
		EntityType: "device",
		EntityID:   cmd.DeviceID,
		UserID:     cmd.IssuedBy,
		Source:     cmd.Source,
		Details: map[string]any{
			"command_id": cmd.ID,
			"action":     cmd.Action,
			"mode":       cmd.Mode,
		},
	})
	if err != nil {
		s.log.Warn("audit append failed", "command_id", cmd.ID, "error", err)
	}
}

// dispatchCommand publishes the command on the device's MQTT topic,
// best-effort.
func (s *Service) dispatchCommand(d *device.Device, cmd *Command) {
	if s.dispatcher == nil {
		return
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		s.log.Warn("command payload marshal failed", "command_id", cmd.ID, "error", err)
		return
	}

	topic := mqtt.Topics{}.DeviceCommand(d.SerialNumber)
	if err := s.dispatcher.PublishJSON(topic, payload); err != nil {
		s.log.Warn("command dispatch failed",
			"command_id", cmd.ID,
			"topic", topic,
			"error", err,
		)
	}
}
