package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewCommand(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		value   string
		want    string
		wantErr bool
	}{
		{name: "noop ignores value", kind: KindNoop, value: "7", want: "NOOP"},
		{name: "goto", kind: KindGoto, value: "30", want: "GOTO 30"},
		{name: "delete", kind: KindDelete, value: " 120 ", want: "DELETE 120"},
		{name: "let", kind: KindLet, value: "5", want: "LET = 5"},
		{name: "toggle", kind: KindToggle, value: "2", want: "TOGL R[2]"},
		{name: "toggle via var", kind: KindToggleVar, want: "TOGL R[ ]"},
		{name: "copy", kind: KindCopy, value: "b%", want: "COPY B%"},
		{name: "sub", kind: KindSub, value: "D%", want: "SUB D%"},
		{name: "send", kind: KindSend, want: "SEND"},
		{name: "goto without line", kind: KindGoto, value: "", wantErr: true},
		{name: "delete negative line", kind: KindDelete, value: "-10", wantErr: true},
		{name: "toggle out of range", kind: KindToggle, value: "4", wantErr: true},
		{name: "add unknown variable", kind: KindAdd, value: "E%", wantErr: true},
		{name: "unknown kind", kind: Kind("JUMP"), value: "10", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewCommand(1, tt.kind, tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCommand) {
					t.Fatalf("NewCommand() error = %v, want ErrInvalidCommand", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCommand() error: %v", err)
			}
			if cmd.String() != tt.want {
				t.Fatalf("String() = %q, want %q", cmd.String(), tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind(" togLV "); !ok || k != KindToggleVar {
		t.Fatalf("ParseKind() = %q, %t", k, ok)
	}
	if _, ok := ParseKind("CALL"); ok {
		t.Fatalf("ParseKind(CALL) should fail")
	}
}

func TestAllowedLines(t *testing.T) {
	ids := &IDSource{}
	available := []int{10, 20, 30, 40}

	del := mustCommand(t, ids, KindDelete, "30")
	if got, want := del.AllowedLines(available), []int{10, 20, 40}; !reflect.DeepEqual(got, want) {
		t.Fatalf("DELETE 30 AllowedLines() = %v, want %v", got, want)
	}

	for _, kind := range []Kind{KindGoto, KindLet, KindSend} {
		cmd := mustCommand(t, ids, kind, "30")
		if got := cmd.AllowedLines(available); !reflect.DeepEqual(got, available) {
			t.Fatalf("%s AllowedLines() = %v, want %v", kind, got, available)
		}
	}
}

func TestAllowedTilesReturnsWholeInventory(t *testing.T) {
	ids := &IDSource{}
	tiles := NewTilePool(ids, 1)
	cmd := mustCommand(t, ids, KindDelete, "10")

	got := cmd.AllowedTiles(tiles)
	if !reflect.DeepEqual(got, tiles) {
		t.Fatalf("AllowedTiles() = %v, want %v", got, tiles)
	}
	got[0] = nil
	if tiles[0] == nil {
		t.Fatalf("AllowedTiles() must not alias the inventory")
	}
}

func TestSelfDestructs(t *testing.T) {
	ids := &IDSource{}
	if !mustCommand(t, ids, KindGoto, "10").SelfDestructs() || !mustCommand(t, ids, KindDelete, "10").SelfDestructs() {
		t.Fatalf("GOTO and DELETE must self-destruct")
	}
	if mustCommand(t, ids, KindLet, "1").SelfDestructs() {
		t.Fatalf("LET must not self-destruct")
	}
}
