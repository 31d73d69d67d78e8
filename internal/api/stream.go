package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"simventas/internal"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// stream upgrades to a websocket and sends the whole month, sorted by NUMERO,
// on connect and after every change. Only the latest snapshot is kept when the
// client reads slower than the month changes.
func (s *Server) stream(c *gin.Context) {
	month := c.Param("month")
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("month", month), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	updates := make(chan []internal.SaleRecord, 1)
	unsubscribe, err := s.sales.WatchMonth(ctx, month, func(recs []internal.SaleRecord) {
		for {
			select {
			case updates <- recs:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), time.Now().Add(writeWait))
		return
	}
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Info("month stream opened", zap.String("month", month), zap.String("ip", c.ClientIP()))
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			s.logger.Info("month stream closed", zap.String("month", month))
			return
		case <-ctx.Done():
			return
		case recs := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Response{Success: true, Message: month, Data: recs}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
