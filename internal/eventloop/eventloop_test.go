package eventloop

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestRegisterReadDeliversData(t *testing.T) {
	loop, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer loop.Close()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	defer unix.Close(fds[0])

	received := make(chan byte, 1)
	err = loop.RegisterRead(fds[1], func(fd int) error {
		var b [1]byte
		if _, err := unix.Read(fd, b[:]); err != nil {
			return err
		}
		received <- b[0]
		return nil
	})
	if err != nil {
		t.Fatalf("RegisterRead: %v", err)
	}

	go loop.Run()
	defer loop.Stop()

	if _, err := unix.Write(fds[0], []byte{42}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case b := <-received:
		if b != 42 {
			t.Errorf("got %d, want 42", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestUnregisterAfterRegisterSucceeds(t *testing.T) {
	loop, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer loop.Close()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	if err := loop.RegisterRead(fds[1], func(fd int) error { return nil }); err != nil {
		t.Fatalf("RegisterRead: %v", err)
	}
	if err := loop.Unregister(fds[1]); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
}
