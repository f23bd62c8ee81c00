package tool_events

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exec(t *testing.T, tool agent.Tool, args string) *aisdk.ToolResponse {
	t.Helper()
	resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{
		Function: aisdk.FunctionCall{Name: tool.GetName(), Arguments: json.RawMessage(args)},
	})
	require.NoError(t, err)
	return resp
}

func TestEventTools(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "campus.db"))
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tools, err := Tools(db, Options{Now: func() time.Time { return now }})
	require.NoError(t, err)
	byName := map[string]agent.Tool{}
	for _, tool := range tools {
		byName[tool.GetName()] = tool
	}

	resp := exec(t, byName[AddName], `{"title":"Orientation","date":"2025-03-01","location":"Main Hall"}`)
	require.False(t, resp.IsError, string(resp.Content))
	var past AddOutput
	require.NoError(t, json.Unmarshal(resp.Content, &past))
	assert.Equal(t, "Event Orientation scheduled for 2025-03-01 00:00", past.Message)
	assert.NotEmpty(t, past.EventID)

	resp = exec(t, byName[AddName], `{"title":"Career Fair","date":"2025-04-02 10:30"}`)
	require.False(t, resp.IsError, string(resp.Content))
	var upcoming AddOutput
	require.NoError(t, json.Unmarshal(resp.Content, &upcoming))

	resp = exec(t, byName[AddName], `{"title":"Bad","date":"next tuesday"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "invalid date")

	var all []storage.Event
	require.NoError(t, json.Unmarshal(exec(t, byName[ListName], `{}`).Content, &all))
	require.Len(t, all, 2)
	assert.Equal(t, "Orientation", all[0].Title)

	var soon []storage.Event
	require.NoError(t, json.Unmarshal(exec(t, byName[ListName], `{"upcoming_only":true}`).Content, &soon))
	require.Len(t, soon, 1)
	assert.Equal(t, "Career Fair", soon[0].Title)

	resp = exec(t, byName[UpdateName], `{"event_id":"`+upcoming.EventID+`","field":"event_date","new_value":"2025-04-03"}`)
	require.False(t, resp.IsError, string(resp.Content))
	ev, err := storage.GetEvent(context.Background(), db.DB(), upcoming.EventID)
	require.NoError(t, err)
	assert.True(t, ev.EventDate.Equal(time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)))

	resp = exec(t, byName[UpdateName], `{"event_id":"`+upcoming.EventID+`","field":"capacity","new_value":"10"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "Invalid field 'capacity'")

	resp = exec(t, byName[DeleteName], `{"event_id":"`+past.EventID+`"}`)
	require.False(t, resp.IsError)
	resp = exec(t, byName[DeleteName], `{"event_id":"`+past.EventID+`"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "not found")
}
