package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"gopkg.in/yaml.v3"
)

// seedFile is the layout of a donor seed file:
//
//	donors:
//	  - name: Ravi Kumar
//	    blood_type: O+
//	    region: mumbai
//	    facility: KEM
//	    phone: "9800011111"
type seedFile struct {
	Donors []seedDonor `yaml:"donors"`
}

type seedDonor struct {
	Name      string `yaml:"name"`
	BloodType string `yaml:"blood_type"`
	Region    string `yaml:"region"`
	Facility  string `yaml:"facility"`
	Phone     string `yaml:"phone"`
}

func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

func newSeedCmd(opts *globalOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register every donor listed in a YAML file",
		Long: `Register donors from a YAML file with a top-level "donors" list.

Donors the server rejects are reported and skipped; the command fails
only when no donor could be registered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeedFile(path)
			if err != nil {
				return err
			}

			client := opts.client()
			out := cmd.OutOrStdout()
			registered := 0
			for _, d := range seed.Donors {
				donor, err := client.RegisterDonor(cmd.Context(), services.DonorInput{
					Name:          d.Name,
					BloodType:     d.BloodType,
					Region:        d.Region,
					FacilityQuery: d.Facility,
					Phone:         d.Phone,
				})
				if err != nil {
					fmt.Fprintf(out, "skipped %s: %v\n", d.Name, err)
					continue
				}
				registered++
				fmt.Fprintf(out, "registered %s (%s) at %s\n", donor.Name, donor.BloodType, donor.FacilityName)
			}

			fmt.Fprintf(out, "Seeded %d of %d donors\n", registered, len(seed.Donors))
			if registered == 0 && len(seed.Donors) > 0 {
				return fmt.Errorf("no donors registered from %s", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "YAML file listing donors")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
