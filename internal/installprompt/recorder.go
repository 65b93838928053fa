package installprompt

import (
	"context"
	"fmt"
	"time"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/entities"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/repository"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
)

// saveEventTimeout is the context deadline for persisting install events.
const saveEventTimeout = 3 * time.Second

// Recorder persists prompt lifecycle events from the bus as install
// event history. Subscribe it with bus.Subscribe(recorder.HandleEvent).
type Recorder struct {
	repo repository.InstallEventRepository
	log  logger.Logger
}

// NewRecorder creates a Recorder over the given repository.
func NewRecorder(repo repository.InstallEventRepository, log logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// HandleEvent implements EventHandler. Persistence failures are logged,
// never propagated, so bus dispatch is not disturbed.
func (r *Recorder) HandleEvent(event *Event) {
	record := &entities.InstallEvent{
		EventName: event.Name,
		SessionID: stringProp(event, PropertySession),
		State:     stringProp(event, PropertyState),
		Choice:    stringProp(event, PropertyChoice),
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveEventTimeout)
	defer cancel()
	if err := r.repo.Save(ctx, record); err != nil {
		r.log.Error("failed to save install event",
			logger.String("event", event.Name),
			logger.Error(err))
	}
}

func stringProp(event *Event, key string) string {
	v, ok := event.Properties[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
