package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/misc"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// bad credentials
	status, body := s.doRequest(ctx, t, "POST", "/a/login", "", auth.Credentials{
		Username: testUsername,
		Password: "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	var errResp misc.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "wrong credentials", errResp.ErrorMsg)

	token := s.doLogin(ctx, t)

	status, _ = s.doRequest(ctx, t, "GET", "/workouts", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.doRequest(ctx, t, "GET", "/a/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "logged-out", string(body))

	// token no longer valid
	status, _ = s.doRequest(ctx, t, "GET", "/workouts", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
