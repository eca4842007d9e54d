package params

import "testing"

func TestOverrideBeaconConfig(t *testing.T) {
	cfg := MainnetConfig().Copy()
	cfg.SlotsPerEpoch = 8
	OverrideBeaconConfig(cfg)
	if c := BeaconConfig(); c.SlotsPerEpoch != 8 {
		t.Errorf("SlotsPerEpoch in BeaconConfig incorrect. Wanted %d, got %d", 8, c.SlotsPerEpoch)
	}
	OverrideBeaconConfig(MainnetConfig())
}

func TestMainnetConfig_ValidatorBalanceInvariants(t *testing.T) {
	cfg := MainnetConfig()
	if cfg.EjectionBalance >= cfg.MaxEffectiveBalance {
		t.Errorf("expected ejection balance %d to be below max effective balance %d", cfg.EjectionBalance, cfg.MaxEffectiveBalance)
	}
	if cfg.MaxEffectiveBalance%cfg.EffectiveBalanceIncrement != 0 {
		t.Error("expected max effective balance to be a multiple of the effective balance increment")
	}
}

func TestCopy_DoesNotMutateOriginal(t *testing.T) {
	orig := MainnetConfig()
	cpy := orig.Copy()
	cpy.SlotsPerEpoch = 999
	cpy.GenesisForkVersion[0] = 0xff
	if orig.SlotsPerEpoch == 999 {
		t.Error("mutating the copy mutated the original SlotsPerEpoch")
	}
	if orig.GenesisForkVersion[0] == 0xff {
		t.Error("mutating the copy's fork version mutated the original's backing array")
	}
}
