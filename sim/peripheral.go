package sim

import (
	"strconv"
	"strings"
	"sync"

	"github.com/sparkfun/OpenLog/protocol"
)

// mode is the input state of the simulated shell.
type mode int

const (
	modeShell mode = iota
	modeWrite
	modeAppend
)

// bootBanner is printed after every reset. The firmware prints its
// version number and the receive prompt.
const bootBanner = "\r\n12<"

// garbage replaces reply bodies selected by Garble.
const garbage = "#~?%"

// maxLine is the firmware's command line buffer size.
const maxLine = 128

// Peripheral is an in-memory OpenLog running its command shell.
//
// Commands are executed when CR arrives and the reply is queued at once,
// so a Framer sees it on its next poll. Peripheral implements
// protocol.Transport.
type Peripheral struct {
	mu sync.Mutex

	out  []byte
	line []byte
	mode mode

	// streamDir and streamName name the file receiving a write or append
	streamDir  *dir
	streamName string

	echo     bool
	verbose  bool
	embedded bool

	root *dir
	cwd  *dir

	commands []string
	boots    int

	drop   int
	fail   int
	garble int

	// fakeCount, when set, replaces the file count reported by efcount
	fakeCount *int

	resetHigh bool
}

// New creates a freshly booted peripheral with an empty card.
func New() *Peripheral {
	p := &Peripheral{
		root:      newDir("", nil),
		resetHigh: true,
	}
	p.cwd = p.root
	p.boot()
	return p
}

// reboot restores the power-on shell state. Files persist.
func (p *Peripheral) reboot() {
	p.line = p.line[:0]
	p.mode = modeShell
	p.streamDir = nil
	p.streamName = ""
	p.echo = true
	p.verbose = true
	p.embedded = false
	p.cwd = p.root
}

// boot reboots and prints the banner. Callers hold p.mu.
func (p *Peripheral) boot() {
	p.reboot()
	p.boots++
	p.out = append(p.out[:0], bootBanner...)
}

// Write feeds bytes to the shell. It never fails.
func (p *Peripheral) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.resetHigh {
		return len(b), nil
	}
	for _, c := range b {
		p.input(c)
	}
	return len(b), nil
}

// Available reports whether reply bytes are pending.
func (p *Peripheral) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.out) > 0
}

// ReadByte returns the next reply byte, or protocol.ErrNoData.
func (p *Peripheral) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.out) == 0 {
		return 0, protocol.ErrNoData
	}
	b := p.out[0]
	p.out = p.out[1:]
	return b, nil
}

func (p *Peripheral) input(c byte) {
	switch p.mode {
	case modeWrite:
		if c == protocol.CR {
			p.mode = modeShell
			p.prompt()
			return
		}
		p.streamDir.files[p.streamName] = append(p.streamDir.files[p.streamName], c)

	case modeAppend:
		if c == protocol.Escape {
			p.mode = modeShell
			p.prompt()
			return
		}
		p.streamDir.files[p.streamName] = append(p.streamDir.files[p.streamName], c)

	default:
		switch c {
		case protocol.CR:
			line := string(p.line)
			p.line = p.line[:0]
			p.execute(line)
		case protocol.LF, protocol.Escape:
			// ignored at the shell
		default:
			if len(p.line) < maxLine {
				p.line = append(p.line, c)
			}
		}
	}
}

// result is the outcome of one shell command.
type result struct {
	body   string
	ok     bool
	prompt byte
}

func success(body string) result {
	return result{body: body, ok: true, prompt: protocol.PromptReady}
}

func failure() result {
	return result{prompt: protocol.PromptReady}
}

func (p *Peripheral) execute(line string) {
	if p.echo {
		p.out = append(p.out, line...)
		p.out = append(p.out, protocol.CR, protocol.LF)
	}

	if strings.TrimSpace(line) == "" {
		p.respond(success(""))
		return
	}
	p.commands = append(p.commands, line)

	if p.fail > 0 {
		p.fail--
		p.respond(failure())
		return
	}

	res := p.dispatch(strings.Fields(line))

	if p.drop > 0 {
		p.drop--
		return
	}
	if p.garble > 0 {
		p.garble--
		res.body = garbage
	}
	p.respond(res)
}

func (p *Peripheral) dispatch(args []string) result {
	cmd, args := args[0], args[1:]

	switch cmd {
	case protocol.CmdNew:
		return p.handleNew(args)
	case protocol.CmdWrite:
		return p.handleStream(args, modeWrite)
	case protocol.CmdAppend:
		return p.handleStream(args, modeAppend)
	case protocol.CmdRead:
		return p.handleRead(args)
	case protocol.CmdRemove:
		return p.handleRemove(args)
	case protocol.CmdMakeDir:
		return p.handleMakeDir(args)
	case protocol.CmdChangeDir:
		return p.handleChangeDir(args)
	case protocol.CmdSize:
		return p.handleSize(args)
	case protocol.CmdSync:
		return success("")
	case protocol.CmdFileCount:
		count := len(p.cwd.files)
		if p.fakeCount != nil {
			count = *p.fakeCount
		}
		return success("count|" + strconv.Itoa(count) + "\r\n")
	case protocol.CmdFileInfo:
		return p.handleFileInfo(args)
	case protocol.CmdEcho:
		return p.handleSetting(args, &p.echo)
	case protocol.CmdVerbose:
		return p.handleSetting(args, &p.verbose)
	case protocol.CmdEmbeddedMode:
		return p.handleSetting(args, &p.embedded)
	}
	return failure()
}

// respond queues a reply in the current reply format.
func (p *Peripheral) respond(res result) {
	p.out = append(p.out, res.body...)
	if !p.embedded {
		p.out = append(p.out, res.prompt)
		return
	}

	p.out = append(p.out, protocol.Escape)
	if res.ok {
		p.out = append(p.out, 'O', 'K')
	} else {
		p.out = append(p.out, protocol.FailMarker)
	}
	p.out = append(p.out, res.prompt)
}

// prompt queues the ready prompt printed when streaming ends.
func (p *Peripheral) prompt() {
	p.respond(success(""))
}

func (p *Peripheral) handleNew(args []string) result {
	if len(args) != 1 || p.cwd.exists(args[0]) {
		return failure()
	}
	p.cwd.files[args[0]] = []byte{}
	return success("")
}

func (p *Peripheral) handleStream(args []string, m mode) result {
	if len(args) != 1 {
		return failure()
	}
	if _, ok := p.cwd.files[args[0]]; !ok {
		return failure()
	}

	if m == modeWrite {
		p.cwd.files[args[0]] = []byte{}
	}
	p.mode = m
	p.streamDir = p.cwd
	p.streamName = args[0]

	return result{ok: true, prompt: protocol.PromptReceive}
}

func (p *Peripheral) handleRead(args []string) result {
	if len(args) != 3 {
		return failure()
	}
	content, ok := p.cwd.files[args[0]]
	if !ok {
		return failure()
	}
	pos, err1 := strconv.ParseUint(args[1], 10, 32)
	length, err2 := strconv.ParseUint(args[2], 10, 32)
	if err1 != nil || err2 != nil {
		return failure()
	}

	if pos >= uint64(len(content)) {
		return success("")
	}
	end := pos + length
	if end > uint64(len(content)) {
		end = uint64(len(content))
	}
	return success(string(content[pos:end]))
}

func (p *Peripheral) handleRemove(args []string) result {
	if len(args) != 1 {
		return failure()
	}
	name := args[0]
	if _, ok := p.cwd.files[name]; ok {
		delete(p.cwd.files, name)
		return success("")
	}
	if d, ok := p.cwd.dirs[name]; ok && len(d.files) == 0 && len(d.dirs) == 0 {
		delete(p.cwd.dirs, name)
		return success("")
	}
	return failure()
}

func (p *Peripheral) handleMakeDir(args []string) result {
	if len(args) != 1 || p.cwd.exists(args[0]) {
		return failure()
	}
	p.cwd.dirs[args[0]] = newDir(args[0], p.cwd)
	return success("")
}

func (p *Peripheral) handleChangeDir(args []string) result {
	if len(args) != 1 {
		return failure()
	}
	if args[0] == protocol.ArgParentDir {
		if p.cwd.parent == nil {
			return failure()
		}
		p.cwd = p.cwd.parent
		return success("")
	}

	d, ok := p.cwd.dirs[args[0]]
	if !ok {
		return failure()
	}
	p.cwd = d
	return success("")
}

func (p *Peripheral) handleSize(args []string) result {
	if len(args) != 1 {
		return failure()
	}
	content, ok := p.cwd.files[args[0]]
	if !ok {
		return success("-1\r\n")
	}
	return success(strconv.Itoa(len(content)) + "\r\n")
}

func (p *Peripheral) handleFileInfo(args []string) result {
	if len(args) != 1 {
		return failure()
	}
	index, err := strconv.Atoi(args[0])
	names := p.cwd.fileNames()
	if err != nil || index < 0 || index >= len(names) {
		return failure()
	}
	name := names[index]
	return success(name + "|" + strconv.Itoa(len(p.cwd.files[name])) + "\r\n")
}

func (p *Peripheral) handleSetting(args []string, setting *bool) result {
	if len(args) != 1 {
		return failure()
	}
	switch args[0] {
	case protocol.ArgOn:
		*setting = true
	case protocol.ArgOff:
		*setting = false
	default:
		return failure()
	}
	return success("")
}
