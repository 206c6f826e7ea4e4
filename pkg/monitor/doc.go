// Package monitor watches the visibility of an element over time.
//
// A Monitor samples a visibility.Object whenever its strategy asks it to,
// keeps the latest state with one step of history, and publishes events
// derived from the transition:
//
//	update            every sample
//	percentagechange  the visible percentage changed
//	visibilitychange  the state code changed
//	visible           the element became visible after not being visible
//	fullyvisible      the element became fully visible
//	hidden            the element became hidden
//
// Within one sample the topics are published in that order. start and stop
// are published on lifecycle changes.
//
// Basic usage:
//
//	obj, _ := visibility.New(el, host)
//	m, _ := monitor.NewWithConfig(obj, monitor.Config{
//	    OnVisible: func(ev monitor.Event) { ev.Monitor.Stop() },
//	})
//	m.Start()
package monitor
