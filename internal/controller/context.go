package controller

import (
	"context"
)

type contextKey int

const (
	roomIdCtxKey contextKey = iota
	participantIdCtxKey
)

func (c controller) getRoomIdFromCtx(ctx context.Context) string {
	roomId, ok := ctx.Value(roomIdCtxKey).(string)
	if !ok {
		return ""
	}

	return roomId
}

func (c controller) getParticipantIdFromCtx(ctx context.Context) string {
	participantId, ok := ctx.Value(participantIdCtxKey).(string)
	if !ok {
		return ""
	}

	return participantId
}
