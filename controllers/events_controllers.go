package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hostelhq/hostel-app/realtime"
	"github.com/hostelhq/hostel-app/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler upgrades the connection and subscribes it to the hostel's
// event stream. Auth and membership were already checked by the
// middlewares; browsers pass the token as ?token= since the WebSocket
// API cannot set headers.
func EventsHandler(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")
	role := c.GetString("role")
	if hostelID == 0 {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, errors.New("missing hostel scope"))
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade: %v", err)
		return
	}

	realtime.RegisterClient(ws, hostelID, role)
	defer realtime.UnregisterClient(ws)

	// Reads only serve to detect the peer going away.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
