package handler

import (
	"net/http"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/logging"
	"ResumeSense/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleStatusConnection godoc
// @Summary      업로드 진행 상태 WebSocket 연결
// @Description  업로드 파이프라인의 단계(converting, uploading, analyzing, completed, failed)를 실시간으로 수신합니다.
// @Description  <br>
// @Description  **참고: 이것은 표준 HTTP API가 아닙니다.**
// @Description  클라이언트는 `ws://` 또는 `wss://` 스킴을 사용하여 이 엔드포인트에 연결해야 합니다.
// @Description  인증은 HTTP Header가 아닌 **쿼리 파라미터('token')**를 통해 수행됩니다.
// @Tags         WebSocket (Status)
// @Param        token    query     string  true  "로그인 시 발급받은 JWT 토큰"
// @Success      101      {string}  string  "101 Switching Protocols (WebSocket으로 프로토콜 전환 성공)"
// @Failure      401      {object}  handler.ErrorResponse "토큰 누락 또는 유효하지 않은 토큰"
// @Router       /ws/status [get]
func (h *Handler) HandleStatusConnection(c *gin.Context) {
	// 사용자 토큰 검증
	tokenString := c.Query("token")
	if tokenString == "" {
		_ = c.Error(apperror.Unauthorized("Token required"))
		return
	}
	claims, err := h.Auth.Authenticate(c.Request.Context(), tokenString)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// WebSocket 연결 업그레이드
	log := logging.WithUser(h.Logger, claims.UID)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.WithError(log, err).Warn("failed to upgrade to websocket")
		return
	}
	log.Info("status websocket connected")

	metrics.WebSocketConnectionsCurrent.Inc()
	defer metrics.WebSocketConnectionsCurrent.Dec()

	// 연결이 끊길 때까지 대기
	h.Hub.Attach(claims.UID, conn).ReadLoop()
	log.Info("status websocket closed")
}
