package visibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vissense/vissense-go/pkg/env"
	"github.com/vissense/vissense-go/pkg/env/mocks"
	"github.com/vissense/vissense-go/pkg/visibility"
)

func newWindowElement(t *testing.T, rect env.Rect) (*env.Window, *env.Node) {
	t.Helper()
	w := env.NewWindow(100, 100)
	el, err := w.CreateElement("el", "", rect)
	require.NoError(t, err)
	return w, el
}

func TestNewRejectsInvalidElement(t *testing.T) {
	w := env.NewWindow(100, 100)
	text, _ := w.CreateText("t", "")

	_, err := visibility.New(text, w)
	assert.ErrorIs(t, err, visibility.ErrInvalidElement)

	_, err = visibility.New(nil, w)
	assert.ErrorIs(t, err, visibility.ErrInvalidElement)

	_, err = visibility.New(w.Document(), w)
	assert.ErrorIs(t, err, visibility.ErrInvalidElement)

	el, _ := w.CreateElement("el", "", env.Rect{})
	_, err = visibility.New(el, nil)
	assert.ErrorIs(t, err, visibility.ErrNilHost)
}

func TestObjectStateFullyVisible(t *testing.T) {
	w, el := newWindowElement(t, env.NewRect(10, 10, 20, 20))

	obj, err := visibility.New(el, w)
	require.NoError(t, err)

	s := obj.State()
	assert.Equal(t, visibility.FullyVisible, s.Code)
	assert.Equal(t, 1.0, s.Percentage)
	assert.Nil(t, s.Previous)
	assert.True(t, obj.IsVisible())
	assert.True(t, obj.IsFullyVisible())
	assert.False(t, obj.IsHidden())
	assert.Same(t, el, obj.Element())
}

func TestObjectStateIsLive(t *testing.T) {
	w, el := newWindowElement(t, env.NewRect(0, 0, 10, 10))
	obj, err := visibility.New(el, w)
	require.NoError(t, err)

	assert.Equal(t, 1.0, obj.Percentage())

	require.NoError(t, w.Move("el", 0, -5))
	assert.Equal(t, 0.5, obj.Percentage())
	assert.Equal(t, visibility.Visible, obj.State().Code)

	require.NoError(t, w.SetDisplay("el", env.DisplayNone))
	assert.Equal(t, 0.0, obj.Percentage())
	assert.True(t, obj.IsHidden())
}

func TestObjectPageHiddenForcesHidden(t *testing.T) {
	w, el := newWindowElement(t, env.NewRect(0, 0, 10, 10))
	obj, err := visibility.New(el, w)
	require.NoError(t, err)

	w.SetHidden(true)

	s := obj.State()
	assert.Equal(t, visibility.Hidden, s.Code)
	assert.Equal(t, 0.0, s.Percentage)
}

func TestObjectHooksShortCircuitGeometry(t *testing.T) {
	host := mocks.NewMockHost(t)
	w := env.NewWindow(100, 100)
	el, _ := w.CreateElement("el", "", env.Rect{})

	// no BoundingRect, Viewport or IsStyledVisible expectations: a call fails the test
	var order []string
	cfg := visibility.Config{
		VisibilityHooks: []visibility.VisibilityHook{
			func(env.Element) bool { order = append(order, "first"); return true },
			func(env.Element) bool { order = append(order, "second"); return false },
		},
	}

	obj, err := visibility.NewWithConfig(el, host, cfg)
	require.NoError(t, err)

	s := obj.State()
	assert.Equal(t, visibility.Hidden, s.Code)
	assert.Equal(t, 0.0, s.Percentage)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestObjectPageHookRunsAfterCallerHooks(t *testing.T) {
	host := mocks.NewMockHost(t)
	host.EXPECT().IsHidden().Return(true).Once()

	w := env.NewWindow(100, 100)
	el, _ := w.CreateElement("el", "", env.Rect{})

	called := false
	obj, err := visibility.NewWithConfig(el, host, visibility.Config{
		VisibilityHooks: []visibility.VisibilityHook{
			func(env.Element) bool { called = true; return true },
		},
	})
	require.NoError(t, err)

	assert.True(t, obj.IsHidden())
	assert.True(t, called)
}

func TestObjectUsesHostGeometry(t *testing.T) {
	host := mocks.NewMockHost(t)
	host.EXPECT().IsHidden().Return(false)
	host.EXPECT().BoundingRect(mock.Anything).Return(env.NewRect(0, 50, 100, 100))
	host.EXPECT().Viewport().Return(env.Size{Width: 100, Height: 100})
	host.EXPECT().IsStyledVisible(mock.Anything).Return(true)

	w := env.NewWindow(100, 100)
	el, _ := w.CreateElement("el", "", env.Rect{})

	obj, err := visibility.New(el, host)
	require.NoError(t, err)

	assert.Equal(t, 0.5, obj.Percentage())
}

func TestObjectCustomThresholdsAndHook(t *testing.T) {
	w, el := newWindowElement(t, env.Rect{})

	pct := 0.3
	obj, err := visibility.NewWithConfig(el, w, visibility.Config{
		HiddenThreshold:       0.25,
		FullyVisibleThreshold: 0.75,
		PercentageHook:        func(env.Element) float64 { return pct },
	})
	require.NoError(t, err)

	assert.Equal(t, visibility.Visible, obj.State().Code)

	pct = 0.25
	assert.Equal(t, visibility.Hidden, obj.State().Code)

	pct = 0.8
	assert.Equal(t, visibility.FullyVisible, obj.State().Code)
	assert.Equal(t, 0.75, obj.Config().FullyVisibleThreshold)
}

func TestObjectDefaultsMaterialized(t *testing.T) {
	w, el := newWindowElement(t, env.Rect{})

	obj, err := visibility.NewWithConfig(el, w, visibility.Config{})
	require.NoError(t, err)

	cfg := obj.Config()
	assert.Equal(t, visibility.DefaultHiddenThreshold, cfg.HiddenThreshold)
	assert.Equal(t, visibility.DefaultFullyVisibleThreshold, cfg.FullyVisibleThreshold)
	assert.NotNil(t, cfg.PercentageHook)
}
