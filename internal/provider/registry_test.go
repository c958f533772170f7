package provider

import "testing"

func TestSelectDefaultsToLocal(t *testing.T) {
	p := Select(Config{})
	if _, ok := p.(*LocalProvider); !ok {
		t.Errorf("Select({}) = %T, want *LocalProvider", p)
	}
}

func TestSelectHostedA(t *testing.T) {
	p := Select(Config{Provider: "hosted-a", HostedAKey: "key", HostedAModel: "model-a"})
	if _, ok := p.(*HostedAProvider); !ok {
		t.Errorf("Select(hosted-a) = %T, want *HostedAProvider", p)
	}
}

func TestSelectHostedB(t *testing.T) {
	p := Select(Config{Provider: "hosted-b", HostedBKey: "key", HostedBModel: "model-b"})
	if _, ok := p.(*HostedBProvider); !ok {
		t.Errorf("Select(hosted-b) = %T, want *HostedBProvider", p)
	}
}

func TestSelectUnknownFallsBackToLocal(t *testing.T) {
	p := Select(Config{Provider: "something-else"})
	if _, ok := p.(*LocalProvider); !ok {
		t.Errorf("Select(unknown) = %T, want *LocalProvider", p)
	}
}
