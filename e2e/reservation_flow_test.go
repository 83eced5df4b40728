package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/api/middleware"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

var (
	userA    = user.Actor{UserID: "e2e-user-a", Role: user.RoleUser}
	userB    = user.Actor{UserID: "e2e-user-b", Role: user.RoleUser}
	operator = user.Actor{UserID: "e2e-operator", Role: user.RoleOperator}
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo   *echo.Echo
	Secret []byte

	clock *testClock
	day   time.Time
	date  string
}

// Request はHTTPリクエストを実行（actor が nil の場合はトークンなし）
func (s *TestServer) Request(t *testing.T, method, path string, body interface{}, actor *user.Actor) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		token, err := middleware.IssueToken(s.Secret, *actor, time.Hour, time.Now())
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// book は予約を作成し、レスポンスを返す
func (s *TestServer) book(t *testing.T, actor user.Actor, seatID, start, end string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := s.Request(t, "POST", "/api/v1/reservations", map[string]interface{}{
		"seat_id": seatID,
		"date":    s.date,
		"start":   start,
		"end":     end,
	}, &actor)
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request(t, "GET", "/api/v1/ready", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["checks"].(map[string]interface{})["postgres"])
}

// TestE2E_CompleteReservationJourney は予約から退室までの流れをテスト
func TestE2E_CompleteReservationJourney(t *testing.T) {
	server := getTestServer(t)
	var reservationID string

	t.Run("予約作成", func(t *testing.T) {
		rec, resp := server.book(t, userA, "e2e-s1", "09:00", "11:00")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		reservationID = resp["id"].(string)
		assert.Equal(t, "CONFIRMED", resp["status"])
	})

	t.Run("空き状況に反映", func(t *testing.T) {
		rec := server.Request(t, "GET", "/api/v1/seats/e2e-s1/availability?date="+server.date, nil, &userB)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		busy := resp["busy"].([]interface{})
		require.Len(t, busy, 1)
		assert.Equal(t, "09:00", busy[0].(map[string]interface{})["start"])
	})

	t.Run("延長", func(t *testing.T) {
		rec := server.Request(t, "POST", fmt.Sprintf("/api/v1/reservations/%s/extend", reservationID),
			map[string]string{"new_end": "12:00"}, &userA)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"end":"12:00"`)
	})

	t.Run("チェックイン", func(t *testing.T) {
		server.SetTime("08:50")
		rec := server.Request(t, "POST", fmt.Sprintf("/api/v1/reservations/%s/check-in", reservationID), nil, &userA)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"status":"CHECKED_IN"`)

		rec = server.Request(t, "GET", "/api/v1/seats/e2e-s1", nil, &userA)
		assert.Contains(t, rec.Body.String(), `"state":"OCCUPIED"`)
	})

	t.Run("チェックアウト", func(t *testing.T) {
		server.SetTime("11:40")
		rec := server.Request(t, "POST", fmt.Sprintf("/api/v1/reservations/%s/check-out", reservationID), nil, &userA)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"status":"COMPLETED"`)

		rec = server.Request(t, "GET", "/api/v1/seats/e2e-s1", nil, &userA)
		assert.Contains(t, rec.Body.String(), `"state":"AVAILABLE"`)
	})

	t.Run("監査ログ確認", func(t *testing.T) {
		rec := server.Request(t, "GET", fmt.Sprintf("/api/v1/admin/reservations/%s/audit", reservationID), nil, &operator)
		require.Equal(t, http.StatusOK, rec.Code)
		var events []map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &events)
		kinds := make([]string, 0, len(events))
		for _, e := range events {
			kinds = append(kinds, e["kind"].(string))
		}
		assert.Equal(t, []string{"PRENOTAZIONE_CREATA", "PRENOTAZIONE_ESTESA", "CHECK_IN", "CHECK_OUT"}, kinds)
	})
}

// TestE2E_ReservationConflict は同一座席への同時予約をテスト
func TestE2E_ReservationConflict(t *testing.T) {
	server := getTestServer(t)

	actors := []user.Actor{userA, userB, userA, userB, userA}
	codes := make([]int, len(actors))
	var wg sync.WaitGroup
	for i, a := range actors {
		wg.Add(1)
		go func(i int, a user.Actor) {
			defer wg.Done()
			rec, _ := server.book(t, a, "e2e-s2", fmt.Sprintf("%02d:00", 9+i%2), fmt.Sprintf("%02d:00", 11+i%2))
			codes[i] = rec.Code
		}(i, a)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created, "codes: %v", codes)
	assert.Equal(t, len(actors)-1, conflicts, "codes: %v", codes)

	var active int
	require.NoError(t, testDB.Get(&active,
		`SELECT COUNT(*) FROM reservations WHERE seat_id = 'e2e-s2' AND status IN ('CONFIRMED', 'CHECKED_IN')`))
	assert.Equal(t, 1, active)
}

// TestE2E_CancelAndRebook はキャンセル後の再予約をテスト
func TestE2E_CancelAndRebook(t *testing.T) {
	server := getTestServer(t)
	var reservationID string

	t.Run("ユーザーAが予約", func(t *testing.T) {
		rec, resp := server.book(t, userA, "e2e-s1", "14:00", "16:00")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		reservationID = resp["id"].(string)
	})

	t.Run("ユーザーBは他人の予約をキャンセルできない", func(t *testing.T) {
		rec := server.Request(t, "POST", fmt.Sprintf("/api/v1/reservations/%s/cancel", reservationID), nil, &userB)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("ユーザーAがキャンセル", func(t *testing.T) {
		rec := server.Request(t, "POST", fmt.Sprintf("/api/v1/reservations/%s/cancel", reservationID), nil, &userA)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"CANCELLED"`)
	})

	t.Run("ユーザーBが再予約に成功", func(t *testing.T) {
		rec, _ := server.book(t, userB, "e2e-s1", "14:30", "16:30")
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("キャンセル通知", func(t *testing.T) {
		rec := server.Request(t, "GET", "/api/v1/notifications", nil, &userA)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"RESERVATION_CANCELLED"`)
	})
}

// TestE2E_Automation はリマインダー・貸出期限通知・ノーショー解放をテスト
func TestE2E_Automation(t *testing.T) {
	server := getTestServer(t)

	testDB.MustExec(`INSERT INTO loans (id, user_id, book_id, book_title, borrowed_on, due_on, status)
		VALUES ('e2e-loan', 'e2e-user-b', 'book-1', 'Il nome della rosa', $1::date - 27, $1::date + 3, 'ACTIVE')`, server.date)

	rec, resp := server.book(t, userB, "e2e-s2", "09:00", "10:00")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reservationID := resp["id"].(string)

	run := func(t *testing.T) map[string]interface{} {
		t.Helper()
		rec := server.Request(t, "POST", "/api/v1/admin/automation/run", nil, &operator)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var summary map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		return summary
	}

	t.Run("開始前のリマインダーと期限通知", func(t *testing.T) {
		server.SetTime("08:42")
		summary := run(t)
		assert.Equal(t, float64(1), summary["remindersSent"])
		assert.Equal(t, float64(1), summary["loanAlertsSent"])
		assert.Equal(t, float64(0), summary["noShowsReleased"])
		assert.Empty(t, summary["errors"])
	})

	t.Run("同じ日の再実行では重複送信しない", func(t *testing.T) {
		server.SetTime("08:44")
		summary := run(t)
		assert.Equal(t, float64(0), summary["remindersSent"])
		assert.Equal(t, float64(0), summary["loanAlertsSent"])
	})

	t.Run("猶予経過後のノーショー解放", func(t *testing.T) {
		server.SetTime("09:16")
		summary := run(t)
		assert.Equal(t, float64(1), summary["noShowsReleased"])

		rec := server.Request(t, "GET", "/api/v1/reservations/"+reservationID, nil, &userB)
		assert.Contains(t, rec.Body.String(), `"status":"NO_SHOW"`)
	})
}
