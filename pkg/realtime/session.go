package realtime

import (
	"context"
	"errors"
	"strconv"
	"time"

	"brainbuddy/focusws/pkg/focus"
	"brainbuddy/focusws/pkg/metrics"

	"github.com/coder/websocket"
)

// greeting is sent before every batch.
const greeting = "Hello"

// saveTimeout bounds persisting the session after the client is gone.
const saveTimeout = 5 * time.Second

type session struct {
	h        *Handler
	ws       *websocket.Conn
	user     string
	subject  string
	location string
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	c := &conn{ws: s.ws}
	if s.h.Hub.Register(s.user, c) {
		s.h.Logger.VerboseMsg("Replaced previous session of %s", s.user)
	}
	defer s.h.Hub.Unregister(s.user, c)

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	series := focus.NewSeries(time.Now())
	in := pump(ctx, s.ws)

	for {
		if err := c.SendJSON(ctx, greeting); err != nil {
			s.h.Logger.VerboseMsg("Greeting %s: %s", s.user, err)
			break
		}

		batch, err := collect(ctx, in, s.h.Config.Frames, s.h.Config.FrameTimeout)
		if errors.Is(err, ErrTimeout) {
			s.h.Logger.VerboseMsg("%s sent %d of %d frames before the timeout", s.user, len(batch), s.h.Config.Frames)
			_ = c.Close(websocket.StatusNormalClosure, "Timeout")
			break
		}
		if err != nil {
			break
		}

		if !s.score(ctx, series, batch) {
			_ = c.Close(websocket.StatusInternalError, "internal error")
			break
		}
	}

	series.End(time.Now())
	s.save(parent, series)
}

// score persists and estimates one batch. It reports false when the
// session cannot continue.
func (s *session) score(ctx context.Context, series *focus.Series, batch [][]byte) bool {
	if s.h.Frames != nil {
		if _, _, err := s.h.Frames.Save(s.user, time.Now(), series.Len()+1, batch); err != nil {
			s.h.Logger.ErrorMsg("Saving frames of %s: %s\n", s.user, err)
		}
	}

	focused, err := s.h.Estimator.Estimate(ctx, batch)
	if err != nil {
		s.h.Logger.ErrorMsg("Estimating focus of %s: %s\n", s.user, err)
		return false
	}

	series.Append(focused)
	metrics.Batches.WithLabelValues(strconv.FormatBool(focused)).Inc()
	s.h.Logger.VerboseMsg("Batch %d of %s: focused=%t", series.Len(), s.user, focused)
	return true
}

func (s *session) save(parent context.Context, series *focus.Series) {
	if series.Len() == 0 || s.h.Scores == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), saveTimeout)
	defer cancel()

	rec := series.Record(s.user, s.subject, s.location)
	if err := s.h.Scores.InsertDaily(ctx, rec); err != nil {
		s.h.Logger.ErrorMsg("Saving score of %s: %s\n", s.user, err)
		return
	}
	s.h.Logger.VerboseMsg("Saved score %.1f of %s", rec.Score, s.user)
}
