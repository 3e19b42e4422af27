package sim

// DropReplies makes the next n command lines execute without replying.
// Empty lines are not counted.
func (p *Peripheral) DropReplies(n int) {
	p.mu.Lock()
	p.drop = n
	p.mu.Unlock()
}

// FailReplies makes the next n command lines fail without executing.
// Empty lines are not counted.
func (p *Peripheral) FailReplies(n int) {
	p.mu.Lock()
	p.fail = n
	p.mu.Unlock()
}

// Garble makes the next n command lines execute but reply with noise in
// place of the body. Empty lines are not counted.
func (p *Peripheral) Garble(n int) {
	p.mu.Lock()
	p.garble = n
	p.mu.Unlock()
}

// ReportCount makes efcount report n files whatever the directory holds.
// A negative n restores the real count.
func (p *Peripheral) ReportCount(n int) {
	p.mu.Lock()
	if n < 0 {
		p.fakeCount = nil
	} else {
		p.fakeCount = &n
	}
	p.mu.Unlock()
}

// Inject queues raw bytes as if the peripheral had sent them.
func (p *Peripheral) Inject(b []byte) {
	p.mu.Lock()
	p.out = append(p.out, b...)
	p.mu.Unlock()
}

// AddFile creates or replaces a file. Missing directories in path are
// created.
func (p *Peripheral) AddFile(path string, content []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	parts := splitPath(path)
	if len(parts) == 0 {
		return
	}
	d := p.root.walk(parts[:len(parts)-1], true)
	d.files[parts[len(parts)-1]] = append([]byte(nil), content...)
}

// AddDir creates a directory and any missing parents.
func (p *Peripheral) AddDir(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root.walk(splitPath(path), true)
}

// File returns a copy of the file at path, relative to the card root.
func (p *Peripheral) File(path string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	d := p.root.walk(parts[:len(parts)-1], false)
	if d == nil {
		return nil, false
	}
	content, ok := d.files[parts[len(parts)-1]]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), content...), true
}

// HasDir reports whether the directory at path exists.
func (p *Peripheral) HasDir(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.root.walk(splitPath(path), false) != nil
}

// Commands returns the non-empty command lines received so far.
func (p *Peripheral) Commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.commands...)
}

// ResetCommands clears the command log.
func (p *Peripheral) ResetCommands() {
	p.mu.Lock()
	p.commands = nil
	p.mu.Unlock()
}

// WorkingDir returns the shell's current directory, e.g. "/LOGS".
func (p *Peripheral) WorkingDir() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cwd.path()
}

// Boots returns the number of resets seen since creation.
func (p *Peripheral) Boots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.boots
}

// Settings reports the echo, verbose and embedded-mode flags.
func (p *Peripheral) Settings() (echo, verbose, embedded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.echo, p.verbose, p.embedded
}

// Configure sets the shell flags directly, as if the firmware had been
// configured on a previous run.
func (p *Peripheral) Configure(echo, verbose, embedded bool) {
	p.mu.Lock()
	p.echo, p.verbose, p.embedded = echo, verbose, embedded
	p.mu.Unlock()
}
