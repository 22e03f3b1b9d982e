package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/wabdevconsult/batuta/domain"
)

func encodeSession(session *domain.PersistedSession) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

// decodeSession rejects records whose token and user disagree
func decodeSession(data []byte) (*domain.PersistedSession, error) {
	var session domain.PersistedSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	if (session.State.User == nil) != (session.State.Token == "") {
		return nil, fmt.Errorf("%w: user and token must be stored together", domain.ErrSessionCorrupt)
	}
	return &session, nil
}
