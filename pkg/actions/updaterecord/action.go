// Package updaterecord implements the update_record action: it applies the
// configured patch to the record whose id the payload carries.
package updaterecord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/protocol"
)

type ActionFactory struct {
	updater protocol.RecordUpdater
}

func NewActionFactory(updater protocol.RecordUpdater) *ActionFactory {
	return &ActionFactory{updater: updater}
}

func (*ActionFactory) ID() string {
	return string(models.ActionUpdateRecord)
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	step := models.ActionStep{Type: models.ActionUpdateRecord, Config: config}

	cfg, err := step.DecodeUpdateRecordConfig()
	if err != nil {
		return nil, err
	}

	return &Action{config: cfg, updater: f.updater}, nil
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"record_kind": map[string]any{
				"type":        "string",
				"description": "Kind of record to patch. The record id is read from the payload at <record_kind>.id. Defaults to task.",
			},
			"patch": map[string]any{
				"type":          "object",
				"minProperties": 1,
				"description":   "Partial update applied to the record.",
			},
		},
		"required": []string{"patch"},
	}
}

type Action struct {
	config  models.UpdateRecordConfig
	updater protocol.RecordUpdater
}

func (a *Action) Execute(ctx context.Context, run models.RuleRun, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", models.ActionUpdateRecord, "record_kind", a.config.RecordKind)

	idValue, ok := run.Payload.Lookup(a.config.RecordKind + ".id")
	if !ok || idValue == nil {
		return nil, fmt.Errorf("payload carries no %s.id to update", a.config.RecordKind)
	}

	recordID, ok := idValue.(string)
	if !ok || recordID == "" {
		return nil, fmt.Errorf("payload %s.id is not a record identifier", a.config.RecordKind)
	}

	err := a.updater.Apply(ctx, a.config.RecordKind, recordID, a.config.Patch)
	if err != nil {
		return nil, fmt.Errorf("record update: %w", err)
	}

	logger.InfoContext(ctx, "Record updated", "record_id", recordID)

	return map[string]any{
		"record_kind": a.config.RecordKind,
		"record_id":   recordID,
		"fields":      len(a.config.Patch),
	}, nil
}
