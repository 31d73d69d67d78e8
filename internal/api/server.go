package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"simventas/internal/activity"
	"simventas/internal/sales"
	"simventas/internal/scan"
)

const maxUploadBytes = 20 << 20

type Server struct {
	sales    *sales.Service
	scan     *scan.Service
	activity *activity.Log
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(svc *sales.Service, scanner *scan.Service, log *activity.Log, logger *zap.Logger) *Server {
	return &Server{
		sales:    svc,
		scan:     scanner,
		activity: log,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes
	r.Use(recovery(s.logger), requestLogger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		success(c, http.StatusOK, "ok", gin.H{"status": "up"})
	})

	v1 := r.Group("/v1", identify(s.activity))
	v1.GET("/months", s.listMonths)
	v1.GET("/templates/:operation", s.template)

	month := v1.Group("/months/:month")
	month.GET("/sales", s.listSales)
	month.GET("/sales/:numero", s.getSale)
	month.POST("/sales/:operation", s.runOperation)
	month.POST("/upload/:operation", s.uploadOperation)
	month.DELETE("/sales", s.deleteSales)
	month.GET("/export", s.export)
	month.POST("/scan", s.scanMatch)
	month.GET("/stream", s.stream)

	return r
}
