package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vissense/vissense-go/pkg/env"
)

func TestPercentage(t *testing.T) {
	viewport := env.Size{Width: 100, Height: 100}

	tests := []struct {
		name string
		rect env.Rect
		want float64
	}{
		{name: "fully inside", rect: env.NewRect(10, 10, 20, 20), want: 1},
		{name: "exactly the viewport", rect: env.NewRect(0, 0, 100, 100), want: 1},
		{name: "half off the left", rect: env.NewRect(0, -5, 10, 10), want: 0.5},
		{name: "ninety percent off the left", rect: env.NewRect(0, -9, 10, 10), want: 0.1},
		{name: "touching the left edge", rect: env.NewRect(0, -10, 10, 10), want: 0},
		{name: "half below the bottom", rect: env.NewRect(95, 0, 10, 10), want: 0.5},
		{name: "quarter in the bottom right corner", rect: env.NewRect(95, 95, 10, 10), want: 0.25},
		{name: "larger than the viewport", rect: env.NewRect(-50, -50, 200, 200), want: 0.25},
		{name: "below the viewport", rect: env.NewRect(100, 0, 10, 10), want: 0},
		{name: "right of the viewport", rect: env.NewRect(0, 100, 10, 10), want: 0},
		{name: "above the viewport", rect: env.NewRect(-10, 0, 10, 10), want: 0},
		{name: "zero width", rect: env.NewRect(10, 10, 0, 10), want: 0},
		{name: "negative height", rect: env.NewRect(10, 10, 10, -1), want: 0},
		{name: "one third rounds", rect: env.NewRect(-20, 0, 10, 30), want: 0.333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.rect, viewport))
		})
	}
}

func TestPercentageBounds(t *testing.T) {
	viewport := env.Size{Width: 320, Height: 240}

	for top := -300.0; top <= 300; top += 37 {
		for left := -400.0; left <= 400; left += 53 {
			for _, size := range []float64{0, 1, 17, 240, 999} {
				p := Percentage(env.NewRect(top, left, size, size/2+1), viewport)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		p, hidden, full float64
		want            Code
	}{
		{0, 0, 1, Hidden},
		{0.001, 0, 1, Visible},
		{0.999, 0, 1, Visible},
		{1, 0, 1, FullyVisible},
		{0.2, 0.2, 0.8, Hidden},
		{0.21, 0.2, 0.8, Visible},
		{0.8, 0.2, 0.8, FullyVisible},
		{0.95, 0.2, 0.8, FullyVisible},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.p, tt.hidden, tt.full), "Classify(%v, %v, %v)", tt.p, tt.hidden, tt.full)
	}
}

func TestClassifyProperty(t *testing.T) {
	thresholds := [][2]float64{{0, 1}, {0.1, 0.9}, {0.5, 0.6}, {0, 0.01}}

	for _, th := range thresholds {
		for i := 0; i <= 1000; i++ {
			p := float64(i) / 1000
			code := Classify(p, th[0], th[1])

			assert.Equal(t, p <= th[0], code == Hidden)
			assert.Equal(t, p >= th[1], code == FullyVisible)
			assert.Equal(t, p > th[0] && p < th[1], code == Visible)
		}
	}
}

func TestGeometricPercentageChecksStyleLast(t *testing.T) {
	w := env.NewWindow(100, 100)
	el, _ := w.CreateElement("a", "", env.NewRect(200, 0, 10, 10))
	_ = w.SetDisplay("a", env.DisplayNone)

	hook := GeometricPercentage(w, w)
	assert.Equal(t, 0.0, hook(el))

	_ = w.Move("a", 0, 0)
	assert.Equal(t, 0.0, hook(el))

	_ = w.SetDisplay("a", env.DisplayBlock)
	assert.Equal(t, 1.0, hook(el))
}
