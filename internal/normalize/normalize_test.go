package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficlens/internal/normalize"
)

func TestBrowser(t *testing.T) {
	n, err := normalize.Default()
	require.NoError(t, err)

	testCases := []struct {
		input    string
		expected string
	}{
		{"Chrome", "Chrome"},
		{"google chrome", "Chrome"},
		{"Chrome Mobile", "Chrome"},
		{"Safari", "Safari"},
		{"Mobile Safari", "Safari"},
		{"Safari (in-app)", "Safari (in-app)"},
		{"IE 11", "Internet Explorer"},
		{"Internet Explorer", "Internet Explorer"},
		{"Microsoft Edge", "Edge"},
		{"firefox", "Firefox"},
		{"Samsung Internet", "Samsung Internet"},
		{"Opera Mini", "Opera Mini"},
		{"Android Webview", "Android Webview"},
		{"", normalize.NotSet},
		{"(not set)", normalize.NotSet},
		{"  Netscape  ", "Netscape"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, n.Browser(tc.input))
		})
	}
}

func TestDeviceCategory(t *testing.T) {
	n, err := normalize.Default()
	require.NoError(t, err)

	assert.Equal(t, "desktop", n.DeviceCategory("Desktop"))
	assert.Equal(t, "mobile", n.DeviceCategory(" smartphone "))
	assert.Equal(t, "tablet", n.DeviceCategory("TABLET"))
	assert.Equal(t, normalize.NotSet, n.DeviceCategory(""))
	assert.Equal(t, "wearable", n.DeviceCategory("Wearable"))
}

func TestNewRejectsBadRules(t *testing.T) {
	_, err := normalize.New([]byte("- regex: '(unclosed'\n  name: x\n"), []byte("[]"))
	assert.Error(t, err)

	_, err = normalize.New([]byte("not: [a list"), []byte("[]"))
	assert.Error(t, err)
}

func TestNewCustomRules(t *testing.T) {
	n, err := normalize.New(
		[]byte("- regex: '(?i)^brave\\s*(\\d+)?$'\n  name: 'Brave $1'\n"),
		[]byte("- regex: '(?i)^watch$'\n  name: wearable\n"),
	)
	require.NoError(t, err)

	assert.Equal(t, "Brave 2", n.Browser("brave 2"))
	assert.Equal(t, "wearable", n.DeviceCategory("Watch"))
	assert.Equal(t, "Chrome", n.Browser("Chrome"))
}
