package cmds

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestVar(t *testing.T) {
	a := Var[int]("TestVarInt")
	b := Var[string]("TestVarString")
	GlobalExecutor.MustExecute([]string{
		"TestVarInt", "42",
		"TestVarString", "bar",
	})
	if *a != 42 {
		t.Fatalf("got %d", *a)
	}
	if *b != "bar" {
		t.Fatalf("got %s", *b)
	}

	GlobalExecutor.MustExecute([]string{
		"TestVarInt.",
	})
	if *a != 0 {
		t.Fatalf("got %d", *a)
	}
}

func TestSwitch(t *testing.T) {
	foo := Switch("TestSwitch")
	GlobalExecutor.MustExecute([]string{
		"TestSwitch",
	})
	if !*foo {
		t.Fatal("should be on")
	}
	GlobalExecutor.MustExecute([]string{
		"!TestSwitch",
	})
	if *foo {
		t.Fatal("should be off")
	}
}

func TestCollect(t *testing.T) {
	list := Collect[string]("TestCollect")
	GlobalExecutor.MustExecute([]string{
		"TestCollect", "a.scm",
		"TestCollect", "b.scm",
	})
	if str := fmt.Sprintf("%v", *list); str != "[a.scm b.scm]" {
		t.Fatalf("got %s", str)
	}
}

func TestTypedVar(t *testing.T) {
	type Path string
	v := Var[Path]("TestTypedVar")
	GlobalExecutor.MustExecute([]string{
		"TestTypedVar", "/tmp/history",
	})
	if *v != "/tmp/history" {
		t.Fatalf("got %s", *v)
	}
}

func TestHelperUsage(t *testing.T) {
	Var[int]("TestHelperUsageVar")
	Switch("TestHelperUsageSwitch")
	Collect[string]("TestHelperUsageCollect")

	buf := new(bytes.Buffer)
	printUsage(buf, GlobalExecutor.commands, 0)
	out := buf.String()
	for _, want := range []string{
		"TestHelperUsageVar <int>\tset TestHelperUsageVar",
		"TestHelperUsageVar.\treset TestHelperUsageVar",
		"TestHelperUsageSwitch\tenable TestHelperUsageSwitch",
		"!TestHelperUsageSwitch\tdisable TestHelperUsageSwitch",
		"TestHelperUsageCollect <string>\tadd to TestHelperUsageCollect, repeatable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
