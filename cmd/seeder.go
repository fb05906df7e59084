package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/account"
	"github.com/frahmantamala/hostel-management/internal/hostel"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/spf13/cobra"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed one staff account per staff role and the boys and girls hostels for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		deps, err := initializeDependencies(cfg)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		ctx := context.Background()

		if clearData {
			// invoices reference accounts, so they go first
			for _, table := range []string{"invoices", "temp_registrations", "hostels", "accounts"} {
				if err := deps.DB.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		for _, r := range role.StaffRoles() {
			email := strings.ReplaceAll(string(r), "_", ".") + "@hostel.local"
			_, err := deps.Accounts.CreateStaff(ctx, account.RegisterDTO{
				FirstName:  staffFirstName(r),
				LastName:   "Staff",
				Email:      email,
				Password:   seedPassword,
				Role:       string(r),
				Department: "Hostel Administration",
			})
			switch {
			case errors.Is(err, internal.ErrDuplicateAccount):
				fmt.Println("staff already exists:", email)
			case err != nil:
				log.Fatalf("failed to seed %s: %v", r, err)
			default:
				fmt.Println("Seeded staff:", email, "role:", r)
			}
		}

		hostels := []hostel.CreateHostelDTO{
			{
				Name: "Boys Hostel", Code: "BH-01", Gender: "boys", Capacity: 400, Floors: 4, RoomsPerFloor: 50,
				Facilities: []hostel.Facility{{Name: "Wi-Fi", IsAvailable: true}, {Name: "Gym", IsAvailable: true}},
			},
			{
				Name: "Girls Hostel", Code: "GH-01", Gender: "girls", Capacity: 300, Floors: 3, RoomsPerFloor: 50,
				Facilities: []hostel.Facility{{Name: "Wi-Fi", IsAvailable: true}, {Name: "Reading Room", IsAvailable: true}},
			},
		}
		for _, dto := range hostels {
			_, err := deps.Hostels.Create(ctx, dto)
			switch {
			case errors.Is(err, internal.ErrDuplicateHostel):
				fmt.Println("hostel already exists:", dto.Code)
			case err != nil:
				log.Fatalf("failed to seed hostel %s: %v", dto.Code, err)
			default:
				fmt.Println("Seeded hostel:", dto.Code)
			}
		}

		fmt.Printf("Seed complete. Staff password is %q\n", seedPassword)
	},
}

func staffFirstName(r role.Role) string {
	words := strings.Split(string(r), "_")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
