package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Game routing/state.
	ErrGameNotFound = "E_GAME_NOT_FOUND"
	ErrGameFinished = "E_GAME_FINISHED"
	ErrGameBusy     = "E_GAME_BUSY"

	// Rule/action layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrIneligible    = "E_INELIGIBLE"
	ErrCardPlay      = "E_CARD_PLAY"
	ErrNoResource    = "E_NO_RESOURCE"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrRateLimit     = "E_RATE_LIMIT"
	ErrConflict      = "E_CONFLICT"
	ErrStale         = "E_STALE"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrGameNotFound:    {},
	ErrGameFinished:    {},
	ErrGameBusy:        {},
	ErrBadRequest:      {},
	ErrIneligible:      {},
	ErrCardPlay:        {},
	ErrNoResource:      {},
	ErrInvalidTarget:   {},
	ErrRateLimit:       {},
	ErrConflict:        {},
	ErrStale:           {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
