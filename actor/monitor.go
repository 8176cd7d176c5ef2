// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

import (
	"fmt"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/hash"
)

// monitor is the single instance of a registered monitor definition
type monitor struct {
	machine *machine
	busy    bool
}

// RegisterMonitor registers a monitor. Monitors are state machines that observe
// the events passed to Context.Monitor and assert global properties. One instance
// per definition exists for the lifetime of the runtime; its start state is
// entered when the execution starts.
//
// Monitors can only be registered before Execute starts scheduling.
// A monitor definition cannot defer events.
func (rt *Runtime) RegisterMonitor(def *Definition) error {
	if rt.phase >= phaseRunning {
		return gerrors.ErrRuntimeStarted
	}
	if def == nil {
		return fmt.Errorf("%w: nil definition", gerrors.ErrInvalidMonitor)
	}
	if def.usesDefer() {
		return fmt.Errorf("monitor=(%s) %w: monitors cannot defer events", def.name, gerrors.ErrInvalidMonitor)
	}
	if _, ok := rt.monitors[def]; ok {
		return fmt.Errorf("monitor=(%s) %w", def.name, gerrors.ErrMonitorAlreadyRegistered)
	}

	m := newMachine(rt, def, def.name, true)
	newContext(rt, m, monitorExecution, NoActor)
	mon := &monitor{machine: m}
	rt.monitors[def] = mon
	rt.monitorOrder = append(rt.monitorOrder, mon)
	rt.coverage.register(def)
	return nil
}

// MonitorState returns the current state of the registered monitor of the given definition
func (rt *Runtime) MonitorState(def *Definition) (string, error) {
	mon, ok := rt.monitors[def]
	if !ok || len(mon.machine.stack) == 0 {
		return "", fmt.Errorf("%w: monitor is not registered or not started", gerrors.ErrInvalidMonitor)
	}
	return mon.machine.currentName(), nil
}

func (rt *Runtime) startMonitors() {
	for _, mon := range rt.monitorOrder {
		if len(mon.machine.stack) == 0 {
			mon.machine.start(nil)
		}
	}
}

// invokeMonitor dispatches the event synchronously on the caller step
func (rt *Runtime) invokeMonitor(def *Definition, event Event) {
	mon, ok := rt.monitors[def]
	if !ok {
		return
	}
	if event == nil {
		rt.sched.reportBug(BugAssertion, "monitor %s received a nil event", def.name)
	}
	if mon.busy {
		rt.sched.reportBug(BugAssertion, "monitor %s cannot be invoked from its own actions", def.name)
	}

	mon.busy = true
	defer func() { mon.busy = false }()
	mon.machine.handle(event)
}

// checkLiveness reports the first monitor left in a hot state
func (rt *Runtime) checkLiveness() {
	for _, mon := range rt.monitorOrder {
		if mon.machine.hot() {
			rt.sched.recordBug(BugLiveness,
				fmt.Sprintf("monitor %s detected a liveness bug in hot state %s at the end of the execution",
					mon.machine.label, mon.machine.currentName()), "")
			return
		}
	}
}

func (rt *Runtime) monitorsFingerprint() uint64 {
	values := make([]uint64, 0, len(rt.monitorOrder))
	for _, mon := range rt.monitorOrder {
		values = append(values, mon.machine.fingerprint())
	}
	return hash.Combine(values...)
}
