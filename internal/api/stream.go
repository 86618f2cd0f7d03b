package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type websocketUpgrader = websocket.Upgrader

func newUpgrader() websocketUpgrader {
	return websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		// Browser clients connect cross-origin, same policy as the REST
		// endpoints.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
}

// streamFrame is one pushed chunk of recording on the websocket. Each frame
// is classified independently and answered with a full prediction result.
type streamFrame struct {
	Data        [][]float64 `json:"data"`
	Fs          float64     `json:"fs,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
}

type streamError struct {
	Error string `json:"error"`
}

// handleStream upgrades the connection and classifies frames until the
// client disconnects. One prediction result goes back per frame received.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.metrics.StreamSessions.Inc()
	defer s.metrics.StreamSessions.Dec()
	log.Info().Str("remote", r.RemoteAddr).Msg("stream session opened")

	conn.SetReadLimit(s.maxBody)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	})

	for {
		if err := conn.SetReadDeadline(time.Now().Add(120 * time.Second)); err != nil {
			return
		}

		var frame streamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("stream read failed")
			}
			return
		}

		if len(frame.Data) == 0 {
			s.metrics.ErrorsTotal.Inc()
			if err := conn.WriteJSON(streamError{Error: "data cannot be empty"}); err != nil {
				return
			}
			continue
		}

		s.metrics.RequestsTotal.Inc()
		result := s.svc.Predict(frame.Data, frame.Fs, frame.Temperature)

		conn.SetWriteDeadline(time.Now().Add(30 * time.Second)) //nolint:errcheck
		if err := conn.WriteJSON(result); err != nil {
			log.Warn().Err(err).Msg("stream write failed")
			return
		}
	}
}
