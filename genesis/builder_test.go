package genesis

import (
	"testing"

	"lotusminer/core"
)

func TestBuilderInstallsBlockOnRun(t *testing.T) {
	state := core.NewBlockState()
	var prev, epoch [32]byte
	b := NewBuilder(state, prev, epoch, 0x1c100000, 0)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		b.Run(stop)
		close(done)
	}()

	// Run installs the initial block before it first checks stop, so
	// stopping right away still leaves that block installed.
	close(stop)
	<-done

	if state.NextBlockEmpty() {
		t.Fatalf("expected genesis builder to install an initial block")
	}
}

func TestReportFormat(t *testing.T) {
	got := Report(0x1c100000, 1624246260, 12345)
	want := "CreateGenesisBlock(0x1c100000, 1624246260, 12345ull);"
	if got != want {
		t.Fatalf("Report() = %q, want %q", got, want)
	}
}
