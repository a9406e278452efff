package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gladiadores/internal/models/db_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

const keepAliveInterval = 15 * time.Second

type RealtimeController struct {
	hub            services.RealtimeHub
	communications services.CommunicationServiceInterface
	log            *zap.Logger
}

func NewRealtimeController(
	hub services.RealtimeHub,
	communications services.CommunicationServiceInterface,
	log *zap.Logger,
) *RealtimeController {
	return &RealtimeController{hub: hub, communications: communications, log: log}
}

// Stream godoc
// @Summary Live updates over Server-Sent Events
// @Description Communications, province counters and events of the caller's own account
// @Tags Realtime
// @Produce text/event-stream
// @Param access_token query string false "JWT when the client cannot set headers"
// @Success 200 {string} string "event stream"
// @Security BearerAuth
// @Router /realtime/stream [get]
func (r *RealtimeController) Stream(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		utils.RespondError(c, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	ctx := c.Request.Context()
	me, err := r.communications.RecipientFor(ctx, accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	ownChannel := services.AccountChannel(accountID)

	events, cancel, err := r.hub.Subscribe(ctx,
		services.ChannelCommunications,
		services.ChannelProvinces,
		ownChannel)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprint(c.Writer, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, open := <-events:
			if !open {
				return
			}
			if !delivers(&me, ownChannel, ev) {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				r.log.Warn("drop realtime event", zap.String("type", ev.Type), zap.Error(err))
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

// delivers reports whether ev reaches the caller. Level changes on the caller's own
// channel update me so later communications are matched against the new level.
func delivers(me *services.Recipient, ownChannel string, ev services.RealtimeEvent) bool {
	switch ev.Type {
	case services.EventCommunicationCreated:
		var comm resp.CommunicationResponse
		if err := json.Unmarshal(ev.Data, &comm); err != nil {
			return false
		}
		return me.Receives(comm)
	case services.EventLevelChanged:
		var change struct {
			To string `json:"to"`
		}
		if ev.Channel == ownChannel && json.Unmarshal(ev.Data, &change) == nil && change.To != "" {
			me.Level = db_models.PassportLevel(change.To)
		}
	}
	return true
}
