package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"gopkg.in/urfave/cli.v1"

	"github.com/AlexZinkM/wallet-dashboard/internal/config"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
)

func main() {
	defer memguard.Purge()

	app := cli.NewApp()
	app.Name = "walletdash"
	app.Usage = "custodial wallet dashboard"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "env",
			Usage: "Optional .env file",
			Value: ".env",
		},
	}
	app.Before = func(c *cli.Context) error {
		if err := config.Init(c.GlobalString("env")); err != nil {
			return err
		}
		cfg := config.Get()
		logger.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	}

	app.Commands = []cli.Command{
		serveCommand,
		{
			Name:      "login",
			Usage:     "Log in and keep the token in the token file",
			ArgsUsage: "<username>",
			Action:    loginAction,
		},
		{
			Name:      "register",
			Usage:     "Create an account",
			ArgsUsage: "<username>",
			Action:    registerAction,
		},
		{
			Name:   "logout",
			Usage:  "Forget the stored token",
			Action: logoutAction,
		},
		{
			Name:   "whoami",
			Usage:  "Show the logged in user",
			Action: whoamiAction,
		},
		{
			Name:  "wallet",
			Usage: "Show the wallet address as text and QR code",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "generate", Usage: "Generate the wallet if there is none"},
			},
			Action: walletAction,
		},
		{
			Name:  "balances",
			Usage: "List balances grouped by kind",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "refresh", Usage: "Resync balances first"},
			},
			Action: balancesAction,
		},
		{
			Name:  "transfer",
			Usage: "Send native currency, tokens or an NFT",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "asset", Usage: `Asset key: "native", a token address or <address>-<tokenId>`},
				cli.StringFlag{Name: "to", Usage: "Recipient address"},
				cli.StringFlag{Name: "amount", Usage: "Amount, ignored for NFTs"},
			},
			Action: transferAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		memguard.SafeExit(1)
	}
}
