package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vissense/vissense-go/pkg/env"
	"github.com/vissense/vissense-go/pkg/log"
	"github.com/vissense/vissense-go/pkg/strategy"
	"github.com/vissense/vissense-go/pkg/visibility"
)

// topicCounter counts events per topic and records their order.
type topicCounter struct {
	mu     sync.Mutex
	counts map[Topic]int
	order  []Topic
	events []Event
}

func newTopicCounter() *topicCounter {
	return &topicCounter{counts: make(map[Topic]int)}
}

func (c *topicCounter) listener(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[ev.Topic]++
	c.order = append(c.order, ev.Topic)
	c.events = append(c.events, ev)
}

func (c *topicCounter) count(topic Topic) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[topic]
}

func (c *topicCounter) take() []Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	order := c.order
	c.order = nil
	return order
}

// recordingTrace is a log.Logger that keeps every event.
type recordingTrace struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingTrace) Log(ev log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingTrace) all() []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]log.Event(nil), r.events...)
}

// fixture is a 10x10 element in a 100x100 window, initially display:none.
func fixture(t *testing.T) (*env.Window, *visibility.Object) {
	t.Helper()
	w := env.NewWindow(100, 100)
	_, err := w.CreateElement("element", "", env.NewRect(0, 0, 10, 10))
	require.NoError(t, err)
	require.NoError(t, w.SetDisplay("element", env.DisplayNone))

	obj, err := visibility.New(w.Element("element"), w)
	require.NoError(t, err)
	return w, obj
}

func allListeners(c *topicCounter) Config {
	return Config{
		Strategy:           []strategy.Strategy{strategy.Noop{}},
		OnStart:            c.listener,
		OnStop:             c.listener,
		OnUpdate:           c.listener,
		OnHidden:           c.listener,
		OnVisible:          c.listener,
		OnFullyVisible:     c.listener,
		OnPercentageChange: c.listener,
		OnVisibilityChange: c.listener,
	}
}

func TestNewRequiresObject(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilObject)
}

func TestNewDefaults(t *testing.T) {
	_, obj := fixture(t)

	m, err := New(obj)
	require.NoError(t, err)

	assert.Nil(t, m.State())
	assert.False(t, m.Started())
	assert.Same(t, obj, m.VisObj())
	assert.NotEmpty(t, m.ID())

	c, ok := m.Strategy().(*strategy.CompositeStrategy)
	require.True(t, ok)
	assert.Len(t, c.Children(), 2)

	other, err := New(obj)
	require.NoError(t, err)
	assert.NotEqual(t, m.ID(), other.ID())
}

func TestEventChain(t *testing.T) {
	w, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, allListeners(c))
	require.NoError(t, err)

	type counts struct{ update, hidden, visible, fully, vischange, pctchange int }
	expect := func(step string, want counts) {
		t.Helper()
		assert.Equal(t, want, counts{
			update:    c.count(TopicUpdate),
			hidden:    c.count(TopicHidden),
			visible:   c.count(TopicVisible),
			fully:     c.count(TopicFullyVisible),
			vischange: c.count(TopicVisibilityChange),
			pctchange: c.count(TopicPercentageChange),
		}, step)
	}

	expect("constructed", counts{})

	m.Start()
	expect("start", counts{1, 1, 0, 0, 1, 1})

	m.Update()
	expect("second sample", counts{2, 1, 0, 0, 1, 1})

	m.Update()
	expect("third sample", counts{3, 1, 0, 0, 1, 1})

	require.NoError(t, w.SetDisplay("element", env.DisplayBlock))
	m.Update()
	expect("displayed", counts{4, 1, 1, 1, 2, 2})

	require.NoError(t, w.Move("element", 0, -5))
	m.Update()
	expect("half visible", counts{5, 1, 1, 1, 3, 3})

	require.NoError(t, w.Move("element", 0, -9))
	m.Update()
	expect("ten percent visible", counts{6, 1, 1, 1, 3, 4})

	require.NoError(t, w.Move("element", 0, -10))
	m.Update()
	expect("out of view", counts{7, 2, 1, 1, 4, 5})

	m.Stop()
	assert.Equal(t, 1, c.count(TopicStart))
	assert.Equal(t, 1, c.count(TopicStop))
}

func TestPublishOrderWithinUpdate(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, allListeners(c))
	require.NoError(t, err)

	m.Update()
	assert.Equal(t, []Topic{TopicUpdate, TopicPercentageChange, TopicVisibilityChange, TopicHidden}, c.take())

	require.NoError(t, obj.Host().(*env.Window).SetDisplay("element", env.DisplayBlock))
	m.Update()
	assert.Equal(t, []Topic{TopicUpdate, TopicPercentageChange, TopicVisibilityChange, TopicVisible, TopicFullyVisible}, c.take())

	m.Start()
	assert.Equal(t, []Topic{TopicUpdate, TopicStart}, c.take())
}

func TestStateCachedWhenNothingChanges(t *testing.T) {
	_, obj := fixture(t)

	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{strategy.Noop{}}})
	require.NoError(t, err)
	assert.Nil(t, m.State())

	m.Start()
	first := m.State()
	require.NotNil(t, first)
	assert.Equal(t, visibility.Hidden, first.Code)
	assert.Equal(t, 0.0, first.Percentage)
	assert.Nil(t, first.Previous)

	m.Update()
	cached := m.State()
	assert.NotSame(t, first, cached)
	require.NotNil(t, cached.Previous)
	assert.Equal(t, visibility.Hidden, cached.Previous.Code)
	assert.Nil(t, cached.Previous.Previous)

	m.Update()
	assert.Same(t, cached, m.State())

	m.Update()
	assert.Same(t, cached, m.State())
	m.Stop()
}

func TestHistoryDepthIsOne(t *testing.T) {
	w, obj := fixture(t)
	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{}})
	require.NoError(t, err)

	require.NoError(t, w.SetDisplay("element", env.DisplayBlock))
	for left := 0.0; left > -10; left-- {
		require.NoError(t, w.Move("element", 0, left))
		m.Update()
		s := m.State()
		if s.Previous != nil {
			assert.Nil(t, s.Previous.Previous)
		}
	}
}

func TestStartStopNoop(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.Noop{}},
		OnUpdate: c.listener,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, c.count(TopicUpdate))

	m.Start()
	assert.Nil(t, m.State().Previous)
	assert.Equal(t, 1, c.count(TopicUpdate))
	assert.True(t, m.Started())

	m.Start()
	assert.Equal(t, 1, c.count(TopicUpdate), "start is a no-op when started")

	m.Update()
	assert.NotNil(t, m.State().Previous)
	assert.Equal(t, 2, c.count(TopicUpdate))

	m.Stop()
	assert.False(t, m.Started())
	assert.Equal(t, 2, c.count(TopicUpdate))
	assert.NotNil(t, m.State(), "last state stays queryable")

	m.Use(strategy.Noop{})
	assert.Equal(t, 3, c.count(TopicUpdate))
}

func TestStopWhenNotStarted(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{}, OnStop: c.listener})
	require.NoError(t, err)

	m.Stop()
	m.Stop()
	assert.Equal(t, 0, c.count(TopicStop))

	m.Start()
	m.Stop()
	m.Stop()
	assert.Equal(t, 1, c.count(TopicStop))
}

func TestRestart(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, allListeners(c))
	require.NoError(t, err)

	m.Start()
	m.Stop()
	m.Start()

	assert.Equal(t, 2, c.count(TopicStart))
	assert.Equal(t, 1, c.count(TopicStop))
	assert.True(t, m.Started())
}

func TestOnInvalidListener(t *testing.T) {
	_, obj := fixture(t)
	m, err := New(obj)
	require.NoError(t, err)

	unregister := m.On(TopicUpdate, nil)
	assert.False(t, unregister())
	assert.Equal(t, 0, m.events.Len(TopicUpdate))

	unregister = m.On(Topic(200), func(Event) {})
	assert.False(t, unregister())
	for _, topic := range Topics() {
		assert.Equal(t, 0, m.events.Len(topic))
	}
}

func TestOnUnregister(t *testing.T) {
	_, obj := fixture(t)
	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{}})
	require.NoError(t, err)

	c := newTopicCounter()
	unregister := m.On(TopicUpdate, c.listener)
	assert.Equal(t, 1, m.events.Len(TopicUpdate))

	m.Update()
	assert.Equal(t, 1, c.count(TopicUpdate))

	assert.True(t, unregister())
	assert.Equal(t, 0, m.events.Len(TopicUpdate))
	assert.False(t, unregister())
	assert.False(t, unregister())

	// registering the same function again does not revive the old token
	m.On(TopicUpdate, c.listener)
	assert.False(t, unregister())

	m.Update()
	assert.Equal(t, 2, c.count(TopicUpdate))
}

func TestEventPayload(t *testing.T) {
	w, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{
		Strategy:           []strategy.Strategy{},
		OnPercentageChange: c.listener,
	})
	require.NoError(t, err)

	require.NoError(t, w.SetDisplay("element", env.DisplayBlock))
	m.Update()
	require.NoError(t, w.Move("element", 0, -5))
	m.Update()

	require.Len(t, c.events, 2)

	first := c.events[0]
	assert.Same(t, m, first.Monitor)
	assert.Equal(t, 1.0, first.Percentage)
	assert.Equal(t, 0.0, first.OldPercentage)
	assert.Nil(t, first.Previous)

	second := c.events[1]
	assert.Equal(t, TopicPercentageChange, second.Topic)
	assert.Equal(t, 0.5, second.Percentage)
	assert.Equal(t, 1.0, second.OldPercentage)
	require.NotNil(t, second.Previous)
	assert.Equal(t, visibility.FullyVisible, second.Previous.Code)
	assert.Same(t, m.State(), second.State)
}

func TestAnyListener(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{}, Any: c.listener})
	require.NoError(t, err)

	m.Start()
	m.Stop()

	assert.Equal(t, []Topic{
		TopicUpdate, TopicPercentageChange, TopicVisibilityChange, TopicHidden,
		TopicStart, TopicStop,
	}, c.take())
}

func TestAutoStart(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.Noop{}},
		Start:    true,
		OnStart:  c.listener,
	})
	require.NoError(t, err)

	assert.True(t, m.Started())
	assert.Equal(t, 1, c.count(TopicStart))
}

func TestStartAsync(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{}, OnStart: c.listener})
	require.NoError(t, err)

	m.StartAsync()
	m.Queue().Wait()

	assert.True(t, m.Started())
	assert.Equal(t, 1, c.count(TopicStart))
}

func TestStartAsyncCancelledByStop(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{}, OnStart: c.listener})
	require.NoError(t, err)

	block := make(chan struct{})
	m.Queue().Defer(func() { <-block })

	m.StartAsync()
	m.Stop()
	close(block)
	m.Queue().Wait()

	assert.False(t, m.Started())
	assert.Equal(t, 0, c.count(TopicStart))
}

func TestStartAsyncSupersededByStart(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{}, OnStart: c.listener})
	require.NoError(t, err)

	block := make(chan struct{})
	m.Queue().Defer(func() { <-block })

	m.StartAsync()
	m.StartAsync()
	m.Start()
	close(block)
	m.Queue().Wait()

	assert.True(t, m.Started())
	assert.Equal(t, 1, c.count(TopicStart))
}

func TestAsyncDelivery(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{},
		Async:    true,
		OnUpdate: c.listener,
	})
	require.NoError(t, err)

	block := make(chan struct{})
	m.Queue().Defer(func() { <-block })

	m.Update()
	assert.Equal(t, 0, c.count(TopicUpdate), "async listeners run later")

	close(block)
	m.Queue().Wait()
	assert.Equal(t, 1, c.count(TopicUpdate))
}

// lifecycleStrategy records strategy calls.
type lifecycleStrategy struct {
	mu    sync.Mutex
	calls []string
}

func (s *lifecycleStrategy) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *lifecycleStrategy) Init(strategy.Target)       { s.record("init") }
func (s *lifecycleStrategy) Start(strategy.Target) bool { s.record("start"); return true }
func (s *lifecycleStrategy) Stop(strategy.Target) bool  { s.record("stop"); return true }

func TestUseSwapsStrategyWithoutEvents(t *testing.T) {
	_, obj := fixture(t)
	c := newTopicCounter()

	first := &lifecycleStrategy{}
	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{first},
		Any:      c.listener,
	})
	require.NoError(t, err)

	m.Start()
	c.take()

	second := &lifecycleStrategy{}
	m.Use(second)

	assert.Equal(t, []string{"init", "start", "stop"}, first.calls)
	assert.Equal(t, []string{"init", "start"}, second.calls)
	assert.Same(t, second, m.Strategy())

	topics := c.take()
	assert.NotContains(t, topics, TopicStart)
	assert.NotContains(t, topics, TopicStop)
	assert.Equal(t, TopicUpdate, topics[0])
	assert.True(t, SwapEventsSuppressed)
}

func TestUseWhenStoppedDoesNotStart(t *testing.T) {
	_, obj := fixture(t)

	m, err := NewWithConfig(obj, Config{Strategy: []strategy.Strategy{}})
	require.NoError(t, err)

	s := &lifecycleStrategy{}
	m.Use(s)
	assert.Equal(t, []string{"init"}, s.calls)
	assert.NotNil(t, m.State())

	m.Use(nil)
	assert.Equal(t, strategy.Noop{}, m.Strategy())
	assert.Equal(t, []string{"init", "stop"}, s.calls)
}

func TestPollingDrivesUpdates(t *testing.T) {
	_, obj := fixture(t)
	mock := clock.NewMock()
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.NewPolling(100*time.Millisecond, mock)},
		OnUpdate: c.listener,
	})
	require.NoError(t, err)

	m.Start()
	assert.Eventually(t, func() bool {
		mock.Add(100 * time.Millisecond)
		return c.count(TopicUpdate) >= 3
	}, time.Second, time.Millisecond)

	m.Stop()
}

func TestEventStrategyDrivesUpdates(t *testing.T) {
	w, obj := fixture(t)
	mock := clock.NewMock()
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.NewEvent(w, 50*time.Millisecond, mock)},
		OnUpdate: c.listener,
	})
	require.NoError(t, err)

	m.Start()
	assert.Equal(t, 1, c.count(TopicUpdate))

	w.ScrollBy(0, 1)
	assert.Equal(t, 2, c.count(TopicUpdate), "leading scroll event samples immediately")

	w.ScrollBy(0, 1)
	w.ScrollBy(0, 1)
	mock.Add(50 * time.Millisecond)
	assert.Equal(t, 3, c.count(TopicUpdate), "burst collapses into one trailing sample")

	m.Stop()
	assert.Equal(t, 0, w.ListenerCount(env.EventScroll))
}

func TestStopFromListener(t *testing.T) {
	w, obj := fixture(t)
	visible := 0

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.Noop{}},
		OnVisible: func(ev Event) {
			visible++
			ev.Monitor.Stop()
		},
	})
	require.NoError(t, err)

	m.Start()
	require.NoError(t, w.SetDisplay("element", env.DisplayBlock))
	m.Update()

	assert.Equal(t, 1, visible)
	assert.False(t, m.Started())
}

func TestStopListenerSeesStarted(t *testing.T) {
	_, obj := fixture(t)
	var seen []bool

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.Noop{}},
		OnStop: func(ev Event) {
			seen = append(seen, ev.Monitor.Started())
			ev.Monitor.Stop()
		},
	})
	require.NoError(t, err)

	m.Start()
	m.Stop()
	assert.Equal(t, []bool{true}, seen, "stop from a stop listener publishes nothing")
	assert.False(t, m.Started())

	m.Start()
	m.Stop()
	assert.Equal(t, []bool{true, true}, seen)
	assert.False(t, m.Started())
}

func TestUpdateFromListenerRunsAfterPublish(t *testing.T) {
	_, obj := fixture(t)
	var order []Topic
	nested := false

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.Noop{}},
		Any: func(ev Event) {
			order = append(order, ev.Topic)
			if ev.Topic == TopicUpdate && !nested {
				nested = true
				ev.Monitor.Update()
			}
		},
	})
	require.NoError(t, err)

	m.Update()
	assert.Equal(t, []Topic{
		TopicUpdate, TopicPercentageChange, TopicVisibilityChange, TopicHidden,
		TopicUpdate,
	}, order)
}

func TestConcurrentUpdatesDoNotInterleave(t *testing.T) {
	w, obj := fixture(t)
	c := newTopicCounter()

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.Noop{}},
		Any:      c.listener,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				display := env.DisplayBlock
				if (g+i)%2 == 0 {
					display = env.DisplayNone
				}
				_ = w.SetDisplay("element", display)
				m.Update()
			}
		}(g)
	}
	wg.Wait()

	c.mu.Lock()
	events := append([]Event(nil), c.events...)
	c.mu.Unlock()
	require.NotEmpty(t, events)

	// every derived event belongs to the update published right before it
	var current *visibility.State
	for i, ev := range events {
		if ev.Topic == TopicUpdate {
			current = ev.State
			continue
		}
		require.NotNil(t, current, "event %d (%s) before any update", i, ev.Topic)
		assert.Same(t, current, ev.State, "event %d (%s)", i, ev.Topic)
	}
}

func TestTrace(t *testing.T) {
	w, obj := fixture(t)
	trace := &recordingTrace{}
	mock := clock.NewMock()

	m, err := NewWithConfig(obj, Config{
		Strategy: []strategy.Strategy{strategy.Noop{}},
		Trace:    trace,
		Clock:    mock,
	})
	require.NoError(t, err)

	m.Start()
	require.NoError(t, w.SetDisplay("element", env.DisplayBlock))
	m.Update()
	m.Stop()

	events := trace.all()
	require.NotEmpty(t, events)

	var topics []string
	for _, ev := range events {
		assert.Equal(t, m.ID(), ev.MonitorID)
		assert.Equal(t, "element", ev.ElementID)
		assert.Equal(t, mock.Now(), ev.Timestamp)
		topics = append(topics, ev.Topic)
	}

	assert.Equal(t, []string{
		"update", "percentagechange", "visibilitychange", "hidden",
		"start", "",
		"update", "percentagechange", "visibilitychange", "visible", "fullyvisible",
		"stop",
	}, topics)

	start := events[4]
	require.NotNil(t, start.StateChange)
	assert.Equal(t, log.StateEntityMonitor, start.StateChange.Entity)
	assert.Equal(t, StateUnstarted, start.StateChange.OldState)
	assert.Equal(t, StateStarted, start.StateChange.NewState)

	strat := events[5]
	require.NotNil(t, strat.StateChange)
	assert.Equal(t, log.StateEntityStrategy, strat.StateChange.Entity)
	assert.Equal(t, "IDLE", strat.StateChange.NewState)

	sample := events[9]
	require.NotNil(t, sample.Sample)
	assert.Equal(t, visibility.FullyVisible, sample.Sample.Code)
	require.NotNil(t, sample.Sample.PreviousCode)
	assert.Equal(t, visibility.Hidden, *sample.Sample.PreviousCode)
}

func TestTopicNames(t *testing.T) {
	for _, topic := range append(Topics(), TopicAny) {
		parsed, err := ParseTopic(topic.String())
		require.NoError(t, err)
		assert.Equal(t, topic, parsed)
	}

	wildcard, err := ParseTopic("any")
	require.NoError(t, err)
	assert.Equal(t, TopicAny, wildcard)

	_, err = ParseTopic("non-existing-event")
	assert.ErrorIs(t, err, ErrUnknownTopic)

	assert.Equal(t, "unknown", Topic(99).String())
	assert.Len(t, Topics(), 8)
}
