package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfcarvalho/miolo/config"
)

type fakeDependency struct {
	name       string
	dependsOn  []string
	failures   int
	startCalls int
	log        *[]string
}

func (f *fakeDependency) GetName() string {
	return f.name
}

func (f *fakeDependency) DependsOn() []string {
	return f.dependsOn
}

func (f *fakeDependency) Start(_ context.Context) error {
	f.startCalls++
	if f.startCalls <= f.failures {
		return errors.New(f.name + " unavailable")
	}
	*f.log = append(*f.log, "start:"+f.name)
	return nil
}

func (f *fakeDependency) Stop(_ context.Context) error {
	*f.log = append(*f.log, "stop:"+f.name)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newStartup(maxAttempts int) *Startup {
	return New(testLogger(), &config.Config{StartupMaxAttempts: maxAttempts})
}

func TestStartup(t *testing.T) {
	t.Run("StartsPrerequisitesFirst", func(t *testing.T) {
		var log []string
		s := newStartup(1)
		s.AddDependency(&fakeDependency{name: "server", dependsOn: []string{"broker", "store"}, log: &log})
		s.AddDependency(&fakeDependency{name: "store", log: &log})
		s.AddDependency(&fakeDependency{name: "broker", dependsOn: []string{"store"}, log: &log})

		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, []string{"start:store", "start:broker", "start:server"}, log)
	})

	t.Run("RetriesWithoutRestartingStartedDependencies", func(t *testing.T) {
		var log []string
		store := &fakeDependency{name: "store", log: &log}
		broker := &fakeDependency{name: "broker", failures: 1, log: &log}
		s := newStartup(2)
		s.AddDependency(store)
		s.AddDependency(broker)

		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, 1, store.startCalls)
		assert.Equal(t, 2, broker.startCalls)
	})

	t.Run("FailsAfterMaxAttempts", func(t *testing.T) {
		var log []string
		s := newStartup(2)
		s.AddDependency(&fakeDependency{name: "store", failures: 5, log: &log})

		err := s.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
	})

	t.Run("RejectsUnregisteredPrerequisite", func(t *testing.T) {
		var log []string
		s := newStartup(1)
		s.AddDependency(&fakeDependency{name: "server", dependsOn: []string{"store"}, log: &log})

		err := s.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unregistered")
	})

	t.Run("StopsInReverseStartOrder", func(t *testing.T) {
		var log []string
		s := newStartup(1)
		s.AddDependency(&fakeDependency{name: "store", log: &log})
		s.AddDependency(&fakeDependency{name: "broker", log: &log})
		s.AddDependency(&fakeDependency{name: "server", dependsOn: []string{"broker"}, log: &log})

		require.NoError(t, s.Start(context.Background()))
		log = log[:0]

		require.NoError(t, s.Stop(context.Background()))
		assert.Equal(t, []string{"stop:server", "stop:broker", "stop:store"}, log)
	})
}
