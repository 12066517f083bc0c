package handler

import (
	"net/http"

	userEntity "Omamori/internal/modules/user/domain/entity"
	userRepository "Omamori/internal/modules/user/domain/repository"
	"Omamori/pkg/util/myjwt"
	"Omamori/pkg/ws"
	"Omamori/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WsHandler upgrades admin dashboards to a websocket that receives alert pushes.
// Browsers cannot set headers on the handshake, so the token comes in the query.
type WsHandler struct {
	hub      *ws.Hub
	userRepo userRepository.UserInfoRepository
}

func NewWsHandler(hub *ws.Hub, userRepo userRepository.UserInfoRepository) *WsHandler {
	return &WsHandler{hub: hub, userRepo: userRepo}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *WsHandler) Connect(c *gin.Context) {
	clientID := c.Query("client_id")
	token := c.Query("token")
	if clientID == "" || token == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	claims, err := myjwt.ParseToken(token)
	if err != nil || claims == nil || claims.Uuid != clientID {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	user, err := h.userRepo.GetUserInfoByUUID(clientID)
	if err != nil || user == nil || user.Status != userEntity.UserStatusNormal {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Error(err.Error())
		return
	}

	client := ws.NewClient(clientID, conn)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	go client.WritePump()
	client.ReadPump()
}
