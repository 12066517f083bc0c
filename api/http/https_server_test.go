package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"Omamori/internal/config"
	"Omamori/internal/testkit"
	"Omamori/pkg/xerr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t  *testing.T
	ge *gin.Engine
}

func (c client) do(method, path, token string, body interface{}, out interface{}) envelope {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.ge.ServeHTTP(w, req)
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil && env.Code == xerr.OK {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (c client) login(username string) (token, uuid string) {
	c.t.Helper()
	env := c.do("POST", "/register", "", map[string]string{"username": username, "password": "secret123"}, nil)
	require.Equal(c.t, xerr.OK, env.Code, env.Message)

	var out struct {
		Uuid  string `json:"uuid"`
		Token string `json:"token"`
	}
	env = c.do("POST", "/login", "", map[string]string{"username": username, "password": "secret123"}, &out)
	require.Equal(c.t, xerr.OK, env.Code, env.Message)
	return out.Token, out.Uuid
}

func newTestServer(t *testing.T) client {
	gin.SetMode(gin.TestMode)
	conf := &config.Config{}
	conf.JwtConfig.Key = "test-secret"
	conf.JwtConfig.Issuer = "omamori-test"
	config.SetConfig(conf)

	srv, err := NewServer(conf, testkit.NewDB(t), nil, "")
	require.NoError(t, err)
	return client{t: t, ge: srv.GE}
}

func TestMonitoringFlow(t *testing.T) {
	c := newTestServer(t)

	adminToken, _ := c.login("alice")
	workerToken, workerID := c.login("bob")

	var org struct {
		Id int64 `json:"id"`
	}
	env := c.do("POST", "/organizations", adminToken, map[string]string{"name": "Night Shift"}, &org)
	require.Equal(t, xerr.OK, env.Code, env.Message)

	env = c.do("POST", fmt.Sprintf("/organizations/%d/members", org.Id), adminToken,
		map[string]string{"user_id": workerID, "role": "member"}, nil)
	require.Equal(t, xerr.OK, env.Code, env.Message)

	env = c.do("POST", fmt.Sprintf("/organizations/%d/members", org.Id), workerToken,
		map[string]string{"user_id": workerID, "role": "admin"}, nil)
	assert.Equal(t, xerr.Forbidden, env.Code)

	var session struct {
		Id     int64  `json:"id"`
		Status string `json:"status"`
	}
	env = c.do("POST", "/work_sessions", workerToken, map[string]interface{}{"organization_id": org.Id, "check_in_interval_minutes": 20}, &session)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	assert.Equal(t, "in_progress", session.Status)

	var created struct {
		Assessment struct {
			RiskLevel               string `json:"risk_level"`
			NextPollIntervalSeconds int    `json:"next_poll_interval_seconds"`
		} `json:"assessment"`
		AlertId *int64 `json:"alert_id"`
	}
	env = c.do("POST", fmt.Sprintf("/work_sessions/%d/safety_logs", session.Id), workerToken,
		map[string]interface{}{"trigger_type": "sos", "battery_level": 90}, &created)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	assert.Equal(t, "danger", created.Assessment.RiskLevel)
	assert.Equal(t, 15, created.Assessment.NextPollIntervalSeconds)
	require.NotNil(t, created.AlertId)

	env = c.do("POST", fmt.Sprintf("/work_sessions/%d/safety_logs", session.Id), adminToken,
		map[string]interface{}{"trigger_type": "heartbeat"}, nil)
	assert.Equal(t, xerr.Forbidden, env.Code)

	var board struct {
		Items []struct {
			Id     int64  `json:"id"`
			UserId string `json:"user_id"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	boardPath := fmt.Sprintf("/organizations/%d/work_sessions?status=in_progress", org.Id)
	env = c.do("GET", boardPath, adminToken, nil, &board)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	require.Equal(t, int64(1), board.Total)
	assert.Equal(t, session.Id, board.Items[0].Id)
	assert.Equal(t, workerID, board.Items[0].UserId)

	env = c.do("GET", boardPath, workerToken, nil, nil)
	assert.Equal(t, xerr.Forbidden, env.Code)

	var latest struct {
		Level string `json:"risk_level"`
	}
	env = c.do("GET", fmt.Sprintf("/work_sessions/%d/risk", session.Id), adminToken, nil, &latest)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	assert.Equal(t, "danger", latest.Level)

	var alerts struct {
		Items []struct {
			Id        int64  `json:"id"`
			AlertType string `json:"alert_type"`
			Status    string `json:"status"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	env = c.do("GET", fmt.Sprintf("/organizations/%d/alerts?status=open", org.Id), adminToken, nil, &alerts)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	require.Equal(t, int64(1), alerts.Total)
	assert.Equal(t, "sos", alerts.Items[0].AlertType)

	alertPath := fmt.Sprintf("/alerts/%d/status", *created.AlertId)
	env = c.do("PATCH", alertPath, workerToken, map[string]string{"status": "resolved"}, nil)
	assert.Equal(t, xerr.Forbidden, env.Code)

	var resolved struct {
		Status          string  `json:"status"`
		HandledByUserId *string `json:"handled_by_user_id"`
	}
	env = c.do("PATCH", alertPath, adminToken, map[string]string{"status": "resolved"}, &resolved)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	assert.Equal(t, "resolved", resolved.Status)
	require.NotNil(t, resolved.HandledByUserId)

	env = c.do("PATCH", alertPath, adminToken, map[string]string{"status": "in_progress"}, nil)
	assert.Equal(t, xerr.BadRequest, env.Code)

	env = c.do("POST", fmt.Sprintf("/work_sessions/%d/finish", session.Id), workerToken, nil, &session)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	assert.Equal(t, "finished", session.Status)
}

func TestUndoOverHTTP(t *testing.T) {
	c := newTestServer(t)
	adminToken, _ := c.login("carol")

	var org struct {
		Id int64 `json:"id"`
	}
	require.Equal(t, xerr.OK, c.do("POST", "/organizations", adminToken, map[string]string{"name": "Solo"}, &org).Code)

	var session struct {
		Id int64 `json:"id"`
	}
	require.Equal(t, xerr.OK, c.do("POST", "/work_sessions", adminToken, map[string]interface{}{"organization_id": org.Id}, &session).Code)

	var created struct {
		SafetyLog struct {
			Id int64 `json:"id"`
		} `json:"safety_log"`
		UndoExpiresAt *string `json:"undo_expires_at"`
	}
	env := c.do("POST", fmt.Sprintf("/work_sessions/%d/safety_logs", session.Id), adminToken,
		map[string]interface{}{"trigger_type": "check_in"}, &created)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	require.NotNil(t, created.UndoExpiresAt)

	env = c.do("DELETE", fmt.Sprintf("/work_sessions/%d/safety_logs/%d", session.Id, created.SafetyLog.Id), adminToken, nil, nil)
	require.Equal(t, xerr.OK, env.Code, env.Message)

	var list struct {
		Total int64 `json:"total"`
	}
	env = c.do("GET", fmt.Sprintf("/work_sessions/%d/safety_logs", session.Id), adminToken, nil, &list)
	require.Equal(t, xerr.OK, env.Code, env.Message)
	assert.Equal(t, int64(0), list.Total)

	env = c.do("GET", fmt.Sprintf("/work_sessions/%d/risk", session.Id), adminToken, nil, nil)
	assert.Equal(t, xerr.NotFound, env.Code)
}

func TestAuthRequired(t *testing.T) {
	c := newTestServer(t)

	env := c.do("GET", "/organizations", "", nil, nil)
	assert.Equal(t, xerr.Unauthorized, env.Code)

	env = c.do("GET", "/organizations", "not-a-token", nil, nil)
	assert.Equal(t, xerr.Unauthorized, env.Code)

	env = c.do("POST", "/login", "", map[string]string{"username": "nobody", "password": "whatever"}, nil)
	assert.Equal(t, xerr.Unauthorized, env.Code)
}

func TestHealthz(t *testing.T) {
	c := newTestServer(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	c.ge.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok","redis":"disabled"}}`, w.Body.String())
}
