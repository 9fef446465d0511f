package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/awnumar/memguard"
	"gopkg.in/urfave/cli.v1"

	"github.com/AlexZinkM/wallet-dashboard/internal/balances"
	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/config"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
	"github.com/AlexZinkM/wallet-dashboard/internal/view"
	"github.com/AlexZinkM/wallet-dashboard/wallet"
)

// terminal is the CLI's equivalent of a browser session: a gate over the token file
type terminal struct {
	backend *client.BackendClient
	store   *session.FileStore
	gate    *session.Gate
	svc     *wallet.Service
}

func newTerminal() (*terminal, error) {
	memguard.CatchInterrupt()

	path, err := config.GetTokenFile()
	if err != nil {
		return nil, err
	}
	cfg := config.Get()

	store := session.NewFileStore(path)
	gate := session.NewGate(store)
	if _, err := gate.Init(); err != nil {
		return nil, err
	}

	backend := client.NewBackendClient(config.GetAPIURL(), cfg.HTTPTimeout)
	return &terminal{
		backend: backend,
		store:   store,
		gate:    gate,
		svc:     wallet.NewService(backend, balances.NewBook(cfg.BalanceTTL), cfg.NativeCurrency),
	}, nil
}

// authed returns the current session or a hint to log in
func (t *terminal) authed() (session.Session, error) {
	sess := t.gate.Session()
	if !sess.Authenticated() {
		return sess, errors.New("not logged in, run: walletdash login <username>")
	}
	return sess, nil
}

// check turns a backend 401 into a logout so the stale token is not reused
func (t *terminal) check(err error) error {
	if err == nil {
		return nil
	}
	if client.IsUnauthorized(err) {
		if _, logoutErr := t.gate.Logout(); logoutErr != nil {
			logger.GetLogger().Warn().Err(logoutErr).Str("path", t.store.Path()).Msg("failed to clear token file")
		}
		return errors.New("session expired, log in again")
	}
	return err
}

func usernameArg(c *cli.Context) (string, error) {
	username := c.Args().First()
	if username == "" {
		return "", errors.New("username is required")
	}
	return username, nil
}

func loginAction(c *cli.Context) error {
	username, err := usernameArg(c)
	if err != nil {
		return err
	}
	t, err := newTerminal()
	if err != nil {
		return err
	}

	password, err := config.PromptForPassword("Password: ")
	if err != nil {
		return err
	}
	defer clear(password)

	if _, err := t.gate.SignIn(context.Background(), t.backend, username, string(password)); err != nil {
		if client.IsUnauthorized(err) {
			return errors.New("invalid username or password")
		}
		return err
	}
	fmt.Println("Logged in as", username)
	logger.GetLogger().Debug().Str("path", t.store.Path()).Msg("token saved")
	return nil
}

func registerAction(c *cli.Context) error {
	username, err := usernameArg(c)
	if err != nil {
		return err
	}
	t, err := newTerminal()
	if err != nil {
		return err
	}

	password, err := config.PromptForPassword("Password: ")
	if err != nil {
		return err
	}
	defer clear(password)

	sess, _, err := t.gate.SignUp(context.Background(), t.backend, username, string(password))
	if err != nil {
		return err
	}
	if sess.Authenticated() {
		fmt.Println("Account created, logged in as", username)
		return nil
	}
	fmt.Println("Account created, run: walletdash login", username)
	return nil
}

func logoutAction(c *cli.Context) error {
	t, err := newTerminal()
	if err != nil {
		return err
	}
	if _, err := t.gate.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func whoamiAction(c *cli.Context) error {
	t, err := newTerminal()
	if err != nil {
		return err
	}
	sess, err := t.authed()
	if err != nil {
		return err
	}

	user, err := t.svc.Profile(context.Background(), sess)
	if err != nil {
		return t.check(err)
	}
	fmt.Printf("%s (%s)\n", user.Username, user.Role)
	return nil
}

func walletAction(c *cli.Context) error {
	t, err := newTerminal()
	if err != nil {
		return err
	}
	sess, err := t.authed()
	if err != nil {
		return err
	}
	ctx := context.Background()

	address, err := t.svc.Address(ctx, sess)
	if errors.Is(err, wallet.ErrNoWallet) && c.Bool("generate") {
		var resp *model.GenerateResponse
		resp, err = t.svc.Generate(ctx, sess)
		if err == nil {
			address = resp.Address
		}
	}
	if errors.Is(err, wallet.ErrNoWallet) {
		return errors.New("no wallet yet, run: walletdash wallet --generate")
	}
	if err != nil {
		return t.check(err)
	}

	qr, err := wallet.TerminalQRCode(address)
	if err != nil {
		return err
	}
	fmt.Println(address)
	fmt.Print(qr)
	return nil
}

func balancesAction(c *cli.Context) error {
	t, err := newTerminal()
	if err != nil {
		return err
	}
	sess, err := t.authed()
	if err != nil {
		return err
	}

	load := t.svc.Balances
	if c.Bool("refresh") {
		load = t.svc.RefreshBalances
	}
	snap, err := load(context.Background(), sess)
	if err != nil {
		return t.check(err)
	}

	groups := view.GroupBalances(snap.Balances, config.Get().IPFSGateway)
	if len(groups) == 0 {
		fmt.Println("No balances")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\n", g.Title)
		for _, row := range g.Rows {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", row.Chain, row.ShortAddress, row.Name, row.TokenID, row.Amount)
		}
	}
	return tw.Flush()
}

func transferAction(c *cli.Context) error {
	t, err := newTerminal()
	if err != nil {
		return err
	}
	sess, err := t.authed()
	if err != nil {
		return err
	}

	form := model.TransferForm{
		Asset:     c.String("asset"),
		ToAddress: c.String("to"),
		Amount:    c.String("amount"),
	}
	resp, err := t.svc.Transfer(context.Background(), sess, form)
	if err != nil {
		return t.check(err)
	}
	fmt.Printf("Submitted %s transfer: %s\n", resp.Shape, resp.Result)
	return nil
}
