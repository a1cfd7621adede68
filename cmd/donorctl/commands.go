package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/donorapi"
)

func newFacilitiesCmd(opts *globalOptions) *cobra.Command {
	var q donorapi.FacilityQuery

	cmd := &cobra.Command{
		Use:   "facilities",
		Short: "List hospitals in the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := opts.client().ListFacilities(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderFacilities(out, page.Facilities)
			fmt.Fprintf(out, "Showing %d of %d hospitals\n", len(page.Facilities), page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Region, "region", "", "Only list hospitals in this city")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "Skip this many hospitals")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "Show at most this many hospitals (0 for all)")
	return cmd
}

func newResolveCmd(opts *globalOptions) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Look up a hospital by partial name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().ResolveFacility(cmd.Context(), args[0], region)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch res.Status {
			case entities.ResolveUnique:
				fmt.Fprintf(out, "Resolved %q\n", res.Query)
			case entities.ResolveAmbiguous:
				fmt.Fprintf(out, "%q matches %d hospitals\n", res.Query, len(res.Matches))
			default:
				fmt.Fprintf(out, "No hospital matches %q\n", res.Query)
				return nil
			}
			renderFacilities(out, res.Matches)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "City to search first")
	return cmd
}

func newRegionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the cities in the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, err := opts.client().ListRegions(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range regions.Regions {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}

func newRegisterCmd(opts *globalOptions) *cobra.Command {
	var in services.DonorInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a blood donor at a hospital",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			donor, err := opts.client().RegisterDonor(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s) at %s, %s\nDonor ID: %s\n",
				donor.Name, donor.BloodType, donor.FacilityName, donor.Region, donor.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Donor name")
	cmd.Flags().StringVar(&in.BloodType, "blood-type", "", bloodTypeUsage())
	cmd.Flags().StringVar(&in.Region, "region", "", "City of the hospital")
	cmd.Flags().StringVar(&in.FacilityQuery, "facility", "", "Hospital name or part of it")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Donor phone number")
	for _, name := range []string{"name", "blood-type", "region", "facility", "phone"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newNearbyCmd(opts *globalOptions) *cobra.Command {
	var q donorapi.NearbyQuery

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Find donors of a blood type near a hospital",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().FindNearby(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Donors) == 0 {
				fmt.Fprintf(out, "No %s donors within %g km of %s\n", res.BloodType, res.RadiusKm, res.Facility.Name)
				return nil
			}
			fmt.Fprintf(out, "%d %s donors within %g km of %s\n", res.Total, res.BloodType, res.RadiusKm, res.Facility.Name)
			renderMatches(out, res.Donors)
			return nil
		},
	}
	cmd.Flags().StringVar(&q.BloodType, "blood-type", "", bloodTypeUsage())
	cmd.Flags().StringVar(&q.Facility, "facility", "", "Hospital name or part of it")
	cmd.Flags().StringVar(&q.Region, "region", "", "City of the hospital")
	cmd.Flags().Float64Var(&q.RadiusKm, "radius", 0, "Search radius in km (server default when 0)")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "Show at most this many donors (server default when 0)")
	_ = cmd.MarkFlagRequired("blood-type")
	_ = cmd.MarkFlagRequired("facility")
	return cmd
}

func newEmergencyCmd(opts *globalOptions) *cobra.Command {
	var in services.EmergencyInput

	cmd := &cobra.Command{
		Use:   "emergency",
		Short: "File an emergency blood request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().CreateEmergencyRequest(cmd.Context(), in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, alertStyle.Render(fmt.Sprintf("Emergency request #%d: %s needs %s at %s",
				res.Request.SequenceID, res.Request.PatientName, res.Request.BloodType, res.Request.Facility.Name)))
			if res.Escalation != nil {
				fmt.Fprintf(out, "%s\nContact %s: %s\n", res.Escalation.Message, res.Escalation.FacilityName, res.Escalation.Contact)
				return nil
			}
			fmt.Fprintf(out, "%d donors within %g km\n", res.Total, res.RadiusKm)
			renderMatches(out, res.Donors)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.PatientName, "patient", "", "Patient name")
	cmd.Flags().StringVar(&in.BloodType, "blood-type", "", bloodTypeUsage())
	cmd.Flags().StringVar(&in.FacilityQuery, "facility", "", "Hospital name or part of it")
	cmd.Flags().StringVar(&in.Region, "region", "", "City of the hospital")
	cmd.Flags().StringVar(&in.Urgency, "urgency", entities.DefaultUrgency, "Urgency label")
	for _, name := range []string{"patient", "blood-type", "facility"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newDonorsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donors",
		Short: "Inspect registered donors",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every registered donor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.client().ListDonors(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderDonors(out, list.Donors)
			fmt.Fprintf(out, "%d donors registered\n", list.Total)
			return nil
		},
	}

	var path string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write every registered donor to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.client().ListDonors(cmd.Context())
			if err != nil {
				return err
			}
			if err := exportDonors(path, list.Donors); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d donors to %s\n", len(list.Donors), path)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&path, "out", "o", "donors.xlsx", "Output workbook path")

	cmd.AddCommand(listCmd, exportCmd)
	return cmd
}

func newRequestsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect emergency requests",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every emergency request in filing order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.client().ListEmergencyRequests(cmd.Context())
			if err != nil {
				return err
			}
			renderRequests(cmd.OutOrStdout(), list.Requests)
			return nil
		},
	})
	return cmd
}
