package tool_campusinfo

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

func TestCampusInfoTools(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(filepath.Join(t.TempDir(), "campus.db"))
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, e := range []storage.Event{
		{Title: "Past", EventDate: now.AddDate(0, 0, -1)},
		{Title: "Soon", EventDate: now.AddDate(0, 0, 3)},
		{Title: "Later", EventDate: now.AddDate(0, 2, 0)},
	} {
		e := e
		require.NoError(t, storage.CreateEvent(ctx, db.DB(), &e))
	}

	info := Info{
		Cafeteria: []Timing{{Label: "Breakfast", Hours: "7:00 AM - 10:00 AM"}},
	}
	tools, err := Tools(db, info, func() time.Time { return now })
	require.NoError(t, err)
	byName := map[string]agent.Tool{}
	for _, tool := range tools {
		byName[tool.GetName()] = tool
	}
	assert.False(t, byName[CafeteriaName].MaySuspend())
	assert.True(t, byName[ScheduleName].MaySuspend())

	exec := func(name, args string) *aisdk.ToolResponse {
		resp, err := byName[name].Execute(ctx, &aisdk.ToolCall{Function: aisdk.FunctionCall{Name: name, Arguments: json.RawMessage(args)}})
		require.NoError(t, err)
		return resp
	}

	resp := exec(CafeteriaName, `{}`)
	require.False(t, resp.IsError)
	assert.JSONEq(t, `[{"label":"Breakfast","hours":"7:00 AM - 10:00 AM"}]`, string(resp.Content))

	resp = exec(LibraryName, `{}`)
	assert.True(t, resp.IsError)
	assert.Equal(t, "no library hours configured", string(resp.Content))

	var events []storage.Event
	require.NoError(t, json.Unmarshal(exec(ScheduleName, `{}`).Content, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Soon", events[0].Title)

	require.NoError(t, json.Unmarshal(exec(ScheduleName, `{"days":90}`).Content, &events))
	assert.Len(t, events, 2)
}
