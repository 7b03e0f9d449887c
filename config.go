package main

import (
	"fmt"
	"io/ioutil"

	"github.com/atelier-labs/atelier/asset"
	"github.com/atelier-labs/atelier/exchange"
	"github.com/atelier-labs/atelier/ledger"
	"github.com/pelletier/go-toml"
)

type Configuration struct {
	Registry struct {
		Admin string `toml:"admin"`
	} `toml:"registry"`
	Exchange struct {
		Admin             string `toml:"admin"`
		FeeAddress        string `toml:"fee-address"`
		FeePercent        uint64 `toml:"fee-percent"`
		MaxRoyaltyPercent uint64 `toml:"max-royalty-percent"`
	} `toml:"exchange"`
	Asset struct {
		Scale int32 `toml:"scale"`
	} `toml:"asset"`
}

func Setup(path string) (*Configuration, error) {
	f, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Configuration
	err = toml.Unmarshal(f, &conf)
	if err != nil {
		return nil, err
	}
	if conf.Exchange.FeePercent == 0 {
		conf.Exchange.FeePercent = exchange.DefaultPlatformFeePercent
	}
	if conf.Exchange.MaxRoyaltyPercent == 0 {
		conf.Exchange.MaxRoyaltyPercent = exchange.DefaultMaxRoyaltyPercent
	}
	if conf.Asset.Scale == 0 {
		conf.Asset.Scale = asset.DefaultScale
	}
	if _, err := ledger.ParseAddress(conf.Registry.Admin); err != nil {
		return nil, fmt.Errorf("registry admin: %w", err)
	}
	if _, err := ledger.ParseAddress(conf.Exchange.Admin); err != nil {
		return nil, fmt.Errorf("exchange admin: %w", err)
	}
	return &conf, nil
}
