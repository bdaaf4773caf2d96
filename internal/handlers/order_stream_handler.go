package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"msp/internal/database"
	"msp/internal/middleware"
	"msp/internal/models"
	"msp/internal/services"
	"msp/pkg/cache"
	"msp/pkg/config"
	"msp/pkg/jwt"
	"msp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// OrderStreamHandler 订单事件的WebSocket推送。管理端连上后实时收到
// 本商城的下单和状态变更事件
type OrderStreamHandler struct {
	upgrader   websocket.Upgrader
	cache      *cache.RedisCache
	log        *logrus.Logger
	jwtManager *jwt.JWTManager
}

func NewOrderStreamHandler() *OrderStreamHandler {
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &OrderStreamHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}
				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 4,
		},
		cache:      database.GetRedisCache(),
		log:        logger.GetLogger(),
		jwtManager: jwt.GetJWTManager(),
	}
}

// Events 建立订单事件连接（商城管理员）
func (h *OrderStreamHandler) Events(c *gin.Context) {
	// WebSocket握手带不了自定义header，令牌走查询参数
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的令牌"})
		return
	}

	if claims.IsStartupIdentity() || claims.Role != models.ProfileRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "需要商城管理员权限"})
		return
	}

	tenantID, exists := middleware.ResolvedTenantID(c)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "商城不存在"})
		return
	}
	if claims.TenantID != tenantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "无权访问其他商城的数据"})
		return
	}

	if h.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "事件服务未启用"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.log.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"profile_id": claims.ProfileID,
	}).Info("订单事件连接建立")

	h.streamEvents(conn, tenantID)
}

// streamEvents 订阅Redis频道并转发到连接
func (h *OrderStreamHandler) streamEvents(conn *websocket.Conn, tenantID uint) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.cache.Subscribe(ctx, services.OrderEventChannel(tenantID))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.WithError(err).Error("订阅订单事件频道失败")
		return
	}

	go h.readPump(conn, cancel)

	ch := pubsub.Channel()
	const writeTimeout = 10 * time.Second

	pingTicker := time.NewTicker(60 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case msg := <-ch:
			if msg == nil {
				return
			}

			var event services.OrderEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.log.WithError(err).Error("订单事件解析失败")
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(&event); err != nil {
				return
			}
		}
	}
}

// readPump 消费客户端消息，连接断开时取消上下文
func (h *OrderStreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	pongWait := 300 * time.Second
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Warn("WebSocket异常关闭")
			}
			break
		}
	}
}

// matchOrigin 检查origin是否匹配allowed模式，支持 *.example.com 通配
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}

	if strings.HasPrefix(allowed, "*.") {
		domain := allowed[2:]

		originHost := origin
		if idx := strings.Index(origin, "://"); idx != -1 {
			originHost = origin[idx+3:]
		}
		if idx := strings.Index(originHost, ":"); idx != -1 {
			originHost = originHost[:idx]
		}

		if originHost == domain || strings.HasSuffix(originHost, "."+domain) {
			return true
		}
	}

	return false
}
