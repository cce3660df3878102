package task

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
)

// Audit diffs ignore bookkeeping columns.
var diffIgnored = map[string]struct{}{
	"updated_at": {},
	"updated_by": {},
	"created_at": {},
}

type auditSnapshot struct {
	*domain.Task
	DriverIDs    []string `json:"driver_ids,omitempty"`
	LeadDriverID string   `json:"lead_driver_id,omitempty"`
}

type fieldChange struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

// auditState serialises a task and, when given, its driver ids.
func auditState(task *domain.Task, rows []domain.TaskAssignee) json.RawMessage {
	if task == nil {
		return nil
	}
	snap := auditSnapshot{Task: task}
	if rows != nil {
		snap.DriverIDs = driverIDs(rows)
		snap.LeadDriverID = leadDriverID(rows)
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return nil
	}
	return b
}

// diffStates lists top-level fields whose values differ between two states.
func diffStates(before, after json.RawMessage) json.RawMessage {
	var b, a map[string]interface{}
	if len(before) > 0 {
		_ = json.Unmarshal(before, &b)
	}
	if len(after) > 0 {
		_ = json.Unmarshal(after, &a)
	}

	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range b {
		keys[k] = struct{}{}
	}
	for k := range a {
		keys[k] = struct{}{}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		if _, skip := diffIgnored[k]; !skip {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	changes := make(map[string]fieldChange)
	for _, k := range names {
		if !reflect.DeepEqual(b[k], a[k]) {
			changes[k] = fieldChange{From: b[k], To: a[k]}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	out, err := json.Marshal(changes)
	if err != nil {
		return nil
	}
	return out
}

// recordAudit appends an audit row. Failures are logged, never returned.
func (uc *UseCase) recordAudit(ctx context.Context, taskID, actorID, action string, before, after json.RawMessage) {
	if uc.audit == nil {
		return
	}
	entry := &domain.AuditEntry{
		TaskID:    taskID,
		Action:    action,
		ChangedAt: uc.now(),
		Before:    before,
		After:     after,
		Diff:      diffStates(before, after),
	}
	if actorID != "" {
		actor := actorID
		entry.ActorID = &actor
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		uc.logger.Warn("audit append failed",
			zap.String("task_id", taskID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// notifyAssigned stores a task_assigned notification per row and publishes them.
func (uc *UseCase) notifyAssigned(ctx context.Context, task *domain.Task, rows []domain.TaskAssignee) {
	if uc.notifications == nil || task == nil || len(rows) == 0 {
		return
	}
	taskID := task.ID
	batch := make([]domain.Notification, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, domain.Notification{
			UserID: r.DriverID,
			Type:   domain.NotificationTaskAssigned,
			TaskID: &taskID,
			Payload: map[string]interface{}{
				"title":      task.Title,
				"task_type":  string(task.Type),
				"type_label": task.Type.Label(),
				"is_lead":    r.IsLead,
			},
		})
	}
	if err := uc.notifications.Insert(ctx, batch); err != nil {
		uc.logger.Warn("notification insert failed", zap.String("task_id", taskID), zap.Error(err))
		return
	}
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, batch); err != nil {
		uc.logger.Warn("notification publish failed", zap.String("task_id", taskID), zap.Error(err))
	}
}
