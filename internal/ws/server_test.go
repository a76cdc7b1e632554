package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/example/ledglow/internal/color"
	"github.com/example/ledglow/internal/effect"
)

type fakeController struct {
	calls  []string
	colors []color.Color
}

func (f *fakeController) LedCount() int        { return 2 }
func (f *fakeController) FrameID() uint64      { return 7 }
func (f *fakeController) ActiveEffect() string { return "fade" }
func (f *fakeController) PendingInputs() int   { return 1 }

func (f *fakeController) SetColor(c color.Color, priority int, duration time.Duration) {
	f.calls = append(f.calls, "color")
	f.colors = append(f.colors, c)
}

func (f *fakeController) SetLedColors(cs []color.Color, priority int, duration time.Duration) error {
	f.calls = append(f.calls, "ledcolors")
	f.colors = append(f.colors, cs...)
	return nil
}

func (f *fakeController) StartEffect(name string, args effect.Args, priority int, duration time.Duration) error {
	f.calls = append(f.calls, "effect:"+name)
	return nil
}

func (f *fakeController) Clear(priority int) { f.calls = append(f.calls, "clear") }
func (f *fakeController) ClearAll()          { f.calls = append(f.calls, "clearall") }

func TestApplyCommands(t *testing.T) {
	ctl := &fakeController{}
	s := NewServer(ctl, []string{"fade"})

	assert.NoError(t, s.Apply(Command{Command: "color", Color: []uint8{1, 2, 3}, Priority: 100}))
	assert.NoError(t, s.Apply(Command{Command: "ledcolors", Colors: []byte{1, 2, 3, 4, 5, 6}}))
	assert.NoError(t, s.Apply(Command{Command: "effect", Effect: "fade", Args: effect.Args{"fade-time": 1.0}}))
	assert.NoError(t, s.Apply(Command{Command: "clear", Priority: 100}))
	assert.NoError(t, s.Apply(Command{Command: "clearall"}))

	assert.Equal(t, []string{"color", "ledcolors", "effect:fade", "clear", "clearall"}, ctl.calls)
	assert.Equal(t, color.New(1, 2, 3), ctl.colors[0])
}

func TestApplyRejectsBadInput(t *testing.T) {
	s := NewServer(&fakeController{}, nil)
	assert.Error(t, s.Apply(Command{Command: "color", Color: []uint8{1}}))
	assert.Error(t, s.Apply(Command{Command: "ledcolors", Colors: []byte{1, 2}}))
	assert.Error(t, s.Apply(Command{Command: "bogus"}))
}

func TestHealth(t *testing.T) {
	s := NewServer(&fakeController{}, []string{"fade", "solid"})
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/health")
	assert.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(7), body["frame_id"])
	assert.Equal(t, "fade", body["active_effect"])
	assert.Equal(t, float64(2), body["led_count"])
}

func TestControlRoundTrip(t *testing.T) {
	ctl := &fakeController{}
	s := NewServer(ctl, nil)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/control"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"command":"effect","effect":"fade","args":{"fade-time":2.56},"priority":50}`)))

	_, data, err := conn.ReadMessage()
	assert.NoError(t, err)
	var rep struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(data, &rep))
	assert.True(t, rep.Success, rep.Error)
	assert.Equal(t, []string{"effect:fade"}, ctl.calls)
}
