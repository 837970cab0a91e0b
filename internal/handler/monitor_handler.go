package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/courseboard/courseboard/internal/config"
	"github.com/courseboard/courseboard/internal/response"
	"github.com/courseboard/courseboard/internal/service"
	ws "github.com/courseboard/courseboard/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pingInterval = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live roster changes for a course to admins.
type MonitorHandler struct {
	rdb           *redis.Client
	courseService *service.CourseService
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, courseService *service.CourseService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:           rdb,
		courseService: courseService,
		log:           log.With().Str("component", "monitor_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// CourseMonitorStream godoc
// WS /ws/v1/courses/:id/monitor
// Upgrades to WebSocket, sends a roster snapshot, then forwards every
// enrollment event published for the course until the client goes away.
func (h *MonitorHandler) CourseMonitorStream(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	snapshot := ws.EnrollmentEvent{
		Event:     ws.EventSnapshot,
		CourseID:  course.ID,
		Enrolled:  len(course.Enrolled),
		Capacity:  course.Capacity,
		SeatsLeft: course.SeatsLeft(),
		At:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := ws.WriteTyped(conn, snapshot); err != nil {
		return
	}

	reqCtx := c.Request.Context()
	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.CourseMonitorChannel(id))
	defer pubsub.Close()

	// Drain the client side; a read error means the peer is gone.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	h.log.Info().Int("course_id", id).Msg("Admin attached to course monitor")

	events := pubsub.Channel()
	for {
		select {
		case <-reqCtx.Done():
			return
		case <-closed:
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
