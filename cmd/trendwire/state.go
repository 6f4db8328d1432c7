package main

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// State is the persisted runtime state of the service
type State struct {
	Version       string    `json:"version"`
	StartupTime   time.Time `json:"startupTime"`
	ShutdownTime  time.Time `json:"shutdownTime,omitempty"`
	SystemStatus  string    `json:"systemStatus"`
	LastRunTime   time.Time `json:"lastRunTime,omitempty"`
	LastRunID     string    `json:"lastRunId,omitempty"`
	LastTopics    []string  `json:"lastTopics,omitempty"`
	NextRunTime   time.Time `json:"nextRunTime,omitempty"`
	RunCount      int       `json:"runCount"`
	FailureCount  int       `json:"failureCount"`
	LastError     string    `json:"lastError,omitempty"`
	LastErrorTime time.Time `json:"lastErrorTime,omitempty"`
	ArticleCount  int       `json:"articleCount"`
}

// StateManager guards the state and writes it to disk on every change
type StateManager struct {
	path  string
	state State
	mutex sync.Mutex
	write sync.Mutex
}

// LoadState reads the state file, starting fresh when it is missing or empty
func LoadState(path string) (*StateManager, error) {
	sm := &StateManager{
		path: path,
		state: State{
			Version:      AppVersion,
			SystemStatus: StatusStarting,
		},
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	case len(data) > 0:
		if err := json.Unmarshal(data, &sm.state); err != nil {
			return nil, err
		}
	}

	sm.state.Version = AppVersion
	sm.state.StartupTime = time.Now()
	sm.state.ShutdownTime = time.Time{}
	sm.state.SystemStatus = StatusStarting
	return sm, sm.save()
}

// Get returns a copy of the current state
func (sm *StateManager) Get() State {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	s := sm.state
	s.LastTopics = append([]string(nil), sm.state.LastTopics...)
	return s
}

// RecordRun stores the outcome of a successful batch
func (sm *StateManager) RecordRun(id string, at time.Time, topicTerms []string, articleCount int) error {
	return sm.update(func(s *State) {
		s.LastRunID = id
		s.LastRunTime = at
		s.LastTopics = append([]string(nil), topicTerms...)
		s.ArticleCount = articleCount
		s.RunCount++
		s.SystemStatus = StatusRunning
	})
}

// RecordFailure stores the last batch error
func (sm *StateManager) RecordFailure(err error, at time.Time) error {
	return sm.update(func(s *State) {
		s.FailureCount++
		s.LastError = err.Error()
		s.LastErrorTime = at
	})
}

// SetNextRun records when the scheduler fires next
func (sm *StateManager) SetNextRun(next time.Time) error {
	return sm.update(func(s *State) {
		s.NextRunTime = next
	})
}

// SetStatus changes the reported system status
func (sm *StateManager) SetStatus(status string) error {
	return sm.update(func(s *State) {
		s.SystemStatus = status
	})
}

// MarkShutdown records the shutdown time
func (sm *StateManager) MarkShutdown() error {
	return sm.update(func(s *State) {
		s.ShutdownTime = time.Now()
	})
}

func (sm *StateManager) update(fn func(*State)) error {
	sm.mutex.Lock()
	fn(&sm.state)
	sm.mutex.Unlock()
	return sm.save()
}

func (sm *StateManager) save() error {
	sm.mutex.Lock()
	data, err := json.MarshalIndent(sm.state, "", "  ")
	sm.mutex.Unlock()
	if err != nil {
		return err
	}
	if sm.path == "" {
		return nil
	}

	sm.write.Lock()
	defer sm.write.Unlock()
	return writeFileAtomic(sm.path, data)
}

// ReadState reads the state file without taking ownership of it
func ReadState(path string) (State, error) {
	var s State
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if len(data) == 0 {
		return s, nil
	}
	err = json.Unmarshal(data, &s)
	return s, err
}
