// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/ninjagenz/automata/pkg/actions/delay"
	"github.com/ninjagenz/automata/pkg/actions/notification"
	"github.com/ninjagenz/automata/pkg/actions/updaterecord"
	"github.com/ninjagenz/automata/pkg/protocol"
	"github.com/ninjagenz/automata/pkg/registry"
)

// NewRegistry builds the action registry with the three native action types.
// A nil scheduler puts delay steps into immediate mode.
func NewRegistry(
	logger *slog.Logger,
	notifier protocol.Notifier,
	updater protocol.RecordUpdater,
	scheduler protocol.ContinuationScheduler,
) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(notification.NewActionFactory(notifier))
	reg.RegisterAction(delay.NewActionFactory(scheduler))
	reg.RegisterAction(updaterecord.NewActionFactory(updater))

	return reg
}
