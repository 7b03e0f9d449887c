package main

import (
	"context"
	"flag"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/atelier-labs/atelier/asset"
	"github.com/atelier-labs/atelier/exchange"
	"github.com/atelier-labs/atelier/ledger"
	"github.com/atelier-labs/atelier/registry"
	"github.com/atelier-labs/atelier/store"
)

func main() {
	ctx := context.Background()

	bp := flag.String("d", "~/.atelier/data", "database directory path")
	cp := flag.String("c", "~/.atelier/config.toml", "configuration file path")
	flag.Parse()

	if strings.HasPrefix(*cp, "~/") {
		usr, _ := user.Current()
		*cp = filepath.Join(usr.HomeDir, (*cp)[2:])
	}
	conf, err := Setup(*cp)
	if err != nil {
		panic(err)
	}

	if strings.HasPrefix(*bp, "~/") {
		usr, _ := user.Current()
		*bp = filepath.Join(usr.HomeDir, (*bp)[2:])
	}
	db, err := store.OpenBadger(ctx, *bp)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	tokens := registry.NewRegistry(db)
	market := exchange.NewExchange(db, tokens)
	funds := asset.NewLedger(db)

	registryAdmin, _ := ledger.ParseAddress(conf.Registry.Admin)
	if err := tokens.InitAdmin(registryAdmin); err != nil {
		panic(err)
	}
	exchangeAdmin, _ := ledger.ParseAddress(conf.Exchange.Admin)
	if err := market.InitAdmin(exchangeAdmin); err != nil {
		panic(err)
	}
	if admin, _ := market.GetAdmin(); admin == exchangeAdmin {
		if conf.Exchange.FeeAddress != "" {
			feeAddress, err := ledger.ParseAddress(conf.Exchange.FeeAddress)
			if err != nil {
				panic(err)
			}
			if err := market.SetPlatformFeeAddress(exchangeAdmin, feeAddress); err != nil {
				panic(err)
			}
		}
		if err := market.SetPlatformFeePercent(exchangeAdmin, conf.Exchange.FeePercent); err != nil {
			panic(err)
		}
		if err := market.SetMaxRoyaltyPercent(exchangeAdmin, conf.Exchange.MaxRoyaltyPercent); err != nil {
			panic(err)
		}
	} else {
		logger.Printf("exchange admin rotated to %s, skipping parameter sync\n", admin)
	}

	for {
		total, err := tokens.GetTotalMinted()
		if err != nil {
			logger.Printf("GetTotalMinted %v\n", err)
		}
		feeAddress, _ := market.GetPlatformFeeAddress()
		feeBalance, _ := funds.GetBalance(feeAddress)
		logger.Printf("atelier minted %d fees %s\n", total, asset.FormatAmount(feeBalance, conf.Asset.Scale))
		time.Sleep(time.Minute)
	}
}
