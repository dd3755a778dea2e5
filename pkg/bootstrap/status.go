package bootstrap

// StepStatus is the loaded flag of one chain step.
type StepStatus struct {
	Name   string `json:"name" yaml:"name"`
	Loaded bool   `json:"loaded" yaml:"loaded"`
}

// Status is a point-in-time copy of the orchestrator state.
type Status struct {
	Initialized         bool         `json:"initialized" yaml:"initialized"`
	Steps               []StepStatus `json:"steps" yaml:"steps"`
	RegistrationPresent bool         `json:"registration_present" yaml:"registration_present"`
	ManagerPresent      bool         `json:"manager_present" yaml:"manager_present"`
}

// Status returns a snapshot. Mutating it does not affect the orchestrator.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	st := Status{
		Initialized:    o.initialized,
		Steps:          make([]StepStatus, len(o.opts.Steps)),
		ManagerPresent: o.manager != nil,
	}
	for i, step := range o.opts.Steps {
		st.Steps[i] = StepStatus{Name: step.Name, Loaded: o.loaded[i]}
	}
	o.mu.Unlock()
	st.RegistrationPresent = o.opts.Registrations.IsDefined(o.opts.Element)
	return st
}
