package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/creditgate/creditgate/adapters/idgen"
	"github.com/creditgate/creditgate/adapters/random"
	"github.com/creditgate/creditgate/adapters/sqlite"
	"github.com/creditgate/creditgate/domain/credit"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage prepaid accounts",
	Long: `Manage CreditGate prepaid accounts.

Each account owns one API key and a credit balance. Every gated request
spends one credit; top up out-of-band with 'accounts topup'.

Examples:
  creditgate accounts list
  creditgate accounts add --email=dev@example.com --credits=100
  creditgate accounts topup acct_123 --amount=50
  creditgate accounts get acct_123`,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	RunE:  runAccountsList,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new prepaid account",
	RunE:  runAccountsAdd,
}

var accountsTopupCmd = &cobra.Command{
	Use:   "topup <account-id>",
	Short: "Add credits to an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsTopup,
}

var accountsGetCmd = &cobra.Command{
	Use:   "get <account-id>",
	Short: "Get account details",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsGet,
}

var (
	accountEmail   string
	accountCredits int64
	accountKey     string
	topupAmount    int64
)

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsTopupCmd)
	accountsCmd.AddCommand(accountsGetCmd)

	accountsAddCmd.Flags().StringVar(&accountEmail, "email", "", "account email (required)")
	accountsAddCmd.Flags().Int64Var(&accountCredits, "credits", 0, "initial credit balance")
	accountsAddCmd.Flags().StringVar(&accountKey, "key", "", "API key (minted if not provided)")
	accountsAddCmd.MarkFlagRequired("email")

	accountsTopupCmd.Flags().Int64Var(&topupAmount, "amount", 0, "credits to add (required)")
	accountsTopupCmd.MarkFlagRequired("amount")
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := newAccountStore(db)
	accounts, err := store.List(context.Background(), 1000, 0)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		fmt.Println()
		fmt.Println("Create one with: creditgate accounts add --email=dev@example.com")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tCREDITS\tCREATED")
	fmt.Fprintln(w, "--\t-----\t-------\t-------")

	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", a.ID, a.Email, a.Credits, a.CreatedAt.Format("2006-01-02"))
	}

	w.Flush()
	return nil
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	key := accountKey
	if key == "" {
		key, err = random.NewAPIKey(random.Real{})
		if err != nil {
			return err
		}
	}

	store := newAccountStore(db)
	now := cliClock.Now().UTC()
	acct := credit.Account{
		ID:        idgen.UUID{}.New(),
		Email:     accountEmail,
		APIKey:    key,
		Credits:   accountCredits,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := store.Create(context.Background(), acct); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Printf("%s Created account: %s\n", checkMark, acct.ID)
	fmt.Printf("   Email:   %s\n", acct.Email)
	fmt.Printf("   API key: %s\n", acct.APIKey)
	fmt.Printf("   Credits: %d\n", acct.Credits)
	return nil
}

func runAccountsTopup(cmd *cobra.Command, args []string) error {
	if topupAmount <= 0 {
		return fmt.Errorf("--amount must be positive, got %d", topupAmount)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := newAccountStore(db)
	balance, err := store.AddCredits(context.Background(), args[0], topupAmount)
	if err != nil {
		return fmt.Errorf("failed to top up: %w", err)
	}

	fmt.Printf("%s Added %d credits to %s (balance: %d)\n", checkMark, topupAmount, args[0], balance)
	return nil
}

func runAccountsGet(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := newAccountStore(db)
	acct, err := store.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("account not found: %s", args[0])
	}

	fmt.Printf("ID:      %s\n", acct.ID)
	fmt.Printf("Email:   %s\n", acct.Email)
	fmt.Printf("API key: %s\n", acct.APIKey)
	fmt.Printf("Credits: %d\n", acct.Credits)
	fmt.Printf("Created: %s\n", acct.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func newAccountStore(db *sqlite.DB) *sqlite.AccountStore {
	return sqlite.NewAccountStore(db, cliClock)
}
