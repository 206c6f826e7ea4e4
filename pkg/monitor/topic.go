package monitor

import (
	"errors"
	"fmt"
)

// ErrUnknownTopic is returned by ParseTopic for names that are not topics.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic identifies a monitor event.
type Topic uint8

const (
	// TopicAny is the wildcard topic. Its listeners receive every topic.
	TopicAny Topic = iota

	// TopicStart is published when the monitor starts.
	TopicStart

	// TopicStop is published when a started monitor stops.
	TopicStop

	// TopicUpdate is published after every sample.
	TopicUpdate

	// TopicHidden is published when the state changes to hidden.
	TopicHidden

	// TopicVisible is published when the element becomes visible after not being visible.
	TopicVisible

	// TopicFullyVisible is published when the state changes to fully visible.
	TopicFullyVisible

	// TopicPercentageChange is published when the percentage changes.
	TopicPercentageChange

	// TopicVisibilityChange is published when the state code changes.
	TopicVisibilityChange

	topicCount
)

var topicNames = [topicCount]string{
	TopicAny:              "*",
	TopicStart:            "start",
	TopicStop:             "stop",
	TopicUpdate:           "update",
	TopicHidden:           "hidden",
	TopicVisible:          "visible",
	TopicFullyVisible:     "fullyvisible",
	TopicPercentageChange: "percentagechange",
	TopicVisibilityChange: "visibilitychange",
}

// String returns the topic name.
func (t Topic) String() string {
	if t.Valid() {
		return topicNames[t]
	}
	return "unknown"
}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	return t < topicCount
}

// Topics returns every topic except the wildcard, in declaration order.
func Topics() []Topic {
	topics := make([]Topic, 0, topicCount-1)
	for t := TopicStart; t < topicCount; t++ {
		topics = append(topics, t)
	}
	return topics
}

// ParseTopic returns the topic with the given name. "*" and "any" select
// the wildcard.
func ParseTopic(name string) (Topic, error) {
	if name == "any" {
		return TopicAny, nil
	}
	for t, n := range topicNames {
		if n == name {
			return Topic(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTopic, name)
}
