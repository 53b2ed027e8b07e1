package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/quota"
)

var (
	upOrderID   string
	upPaymentID string
	upSignature string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Inspect the upload quota or upgrade to premium",
}

var accountShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the plan and upload count of the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		store := accountStore(c)
		a, err := store.Account(commandContext(cmd), c.UserID)
		if err != nil {
			return err
		}
		now := time.Now()
		fmt.Printf("User: %s\n", a.UserID)
		fmt.Printf("Plan: %s\n", a.EffectivePlan(now))
		if a.EffectivePlan(now) == quota.PlanPremium && a.PremiumUntil != nil {
			fmt.Printf("Premium until: %s\n", a.PremiumUntil.Format("2006-01-02"))
		} else if a.Plan == quota.PlanPremium {
			fmt.Println("⚠ Warning: premium plan has expired")
		}
		fmt.Printf("Uploads: %d", a.UploadCount)
		if a.EffectivePlan(now) == quota.PlanFree {
			fmt.Printf(" of %d", c.FreeUploadLimit)
		}
		fmt.Println()
		return nil
	},
}

var accountUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade to premium with a verified payment proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		a, err := accountStore(c).Upgrade(commandContext(cmd), c.UserID, quota.Proof{
			OrderID:   upOrderID,
			PaymentID: upPaymentID,
			Signature: upSignature,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Upgraded '%s' to premium until %s\n", a.UserID, a.PremiumUntil.Format("2006-01-02"))
		return nil
	},
}

var accountDowngradeCmd = &cobra.Command{
	Use:   "downgrade",
	Short: "Return the current user to the free plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := accountStore(c).Downgrade(commandContext(cmd), c.UserID); err != nil {
			return err
		}
		fmt.Printf("✓ '%s' is on the free plan\n", c.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountShowCmd, accountUpgradeCmd, accountDowngradeCmd)
	accountUpgradeCmd.Flags().StringVar(&upOrderID, "order-id", "", "payment order id")
	accountUpgradeCmd.Flags().StringVar(&upPaymentID, "payment-id", "", "payment id")
	accountUpgradeCmd.Flags().StringVar(&upSignature, "signature", "", "hex HMAC-SHA256 of order_id|payment_id")
}
