package seed

import (
	"context"
	"fmt"

	"firerisk/internal/utils"
	"firerisk/pkg/types"
)

type StandardSyncer interface {
	UpsertStandard(ctx context.Context, standard *types.FireStandard) error
	DeleteStandardsNotIn(ctx context.Context, codes []string) (int64, error)
}

// Standards is the source of truth for the reference standards fed into the
// assistant prompt. Rows are keyed on StandardCode:
// - codes listed here are inserted or updated in place
// - codes in the database but not listed here are deleted
//
// To add, change or retire a standard edit this list and run `firerisk seed`.
func Standards() []types.FireStandard {
	const (
		all            = "commercial,industrial,residential"
		nonResidential = "commercial,industrial"
	)

	return []types.FireStandard{
		{
			StandardCode: "RRFSO 2005",
			Title:        "Regulatory Reform (Fire Safety) Order 2005",
			Description:  utils.StringPtr("UK fire safety legislation for non-domestic premises"),
			Category:     "general",
			KeyRequirements: []string{
				"Conduct fire risk assessment",
				"Identify fire hazards and risks",
				"Implement fire safety measures",
				"Maintain fire safety systems",
				"Provide staff training",
				"Establish emergency procedures",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
		{
			StandardCode: "NFPA 101",
			Title:        "Life Safety Code",
			Description:  utils.StringPtr("Provides guidance on fire prevention, detection, and life safety"),
			Category:     "exits",
			KeyRequirements: []string{
				"Minimum 2 exits for occupancy >50",
				"Exit width: 0.2 inches per person",
				"Maximum travel distance to exit: 250 feet",
				"Illuminated exit signs required",
				"Emergency lighting required",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
		{
			StandardCode: "NFPA 13",
			Title:        "Standard for the Installation of Sprinkler Systems",
			Description:  utils.StringPtr("Requirements for automatic sprinkler system design and installation"),
			Category:     "sprinklers",
			KeyRequirements: []string{
				"Sprinkler spacing based on hazard classification",
				"Water supply minimum 500 GPM",
				"Pressure requirements: 7-100 PSI",
				"Annual inspection and testing required",
				"Maintenance records must be kept",
			},
			ApplicableBuildingTypes: utils.StringPtr(nonResidential),
		},
		{
			StandardCode: "NFPA 72",
			Title:        "National Fire Alarm and Signaling Code",
			Description:  utils.StringPtr("Fire alarm system design, installation, and maintenance"),
			Category:     "alarms",
			KeyRequirements: []string{
				"Fire alarm system required for buildings >5000 sq ft",
				"Manual pull stations within 5 feet of exits",
				"Audible alarm minimum 70 dB",
				"Annual inspection and testing required",
				"24-hour monitoring recommended",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
		{
			StandardCode: "BS 5306-1",
			Title:        "Fire Extinguishers - Portable",
			Description:  utils.StringPtr("Specification and maintenance of portable fire extinguishers"),
			Category:     "fire_extinguishers",
			KeyRequirements: []string{
				"One extinguisher per 200 sq meters",
				"Type A for ordinary combustibles",
				"Type B for flammable liquids",
				"Type C for electrical fires",
				"Annual professional inspection required",
				"Accessible and clearly marked",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
		{
			StandardCode: "IEC 60364",
			Title:        "Low-voltage electrical installations",
			Description:  utils.StringPtr("Electrical safety standards and requirements"),
			Category:     "electrical",
			KeyRequirements: []string{
				"RCD protection for circuits",
				"Circuit breakers and fuses properly rated",
				"Periodic inspection every 5 years",
				"Portable appliance testing (PAT)",
				"Fixed installation testing annually",
				"No overloaded sockets or extension cords",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
		{
			StandardCode: "BS 5839-1",
			Title:        "Fire Detection and Fire Alarm Systems",
			Description:  utils.StringPtr("Code of practice for design, installation and maintenance"),
			Category:     "detection",
			KeyRequirements: []string{
				"Smoke detectors in all areas",
				"Heat detectors in kitchens",
				"Detectors tested monthly",
				"Battery backup required",
				"Maintenance plan required",
				"Professional servicing annually",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
		{
			StandardCode: "BS 9999",
			Title:        "Code of practice for fire safety in the design of buildings",
			Description:  utils.StringPtr("Fire safety design principles and requirements"),
			Category:     "general",
			KeyRequirements: []string{
				"Fire-resistant construction materials",
				"Compartmentation to limit fire spread",
				"Adequate ventilation systems",
				"Accessible escape routes",
				"Emergency lighting and signage",
				"Regular maintenance and testing",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
		{
			StandardCode: "NFPA 54",
			Title:        "National Fuel Gas Code",
			Description:  utils.StringPtr("Gas appliance installation and safety"),
			Category:     "gas_safety",
			KeyRequirements: []string{
				"Gas appliances professionally installed",
				"Annual gas safety inspection required",
				"CO detectors required",
				"Proper ventilation for combustion appliances",
				"Gas supply shut-off valve accessible",
				"Leak detection and repair procedures",
			},
			ApplicableBuildingTypes: utils.StringPtr("commercial,residential"),
		},
		{
			StandardCode: "BS 6266",
			Title:        "Code of practice for fire protection of buildings",
			Description:  utils.StringPtr("General fire protection guidance"),
			Category:     "general",
			KeyRequirements: []string{
				"Fire risk assessment required",
				"Housekeeping standards maintained",
				"Combustible materials properly stored",
				"No smoking policies enforced",
				"Staff training and drills conducted",
				"Emergency procedures documented",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
		{
			StandardCode: "NFPA 30",
			Title:        "Flammable and Combustible Liquids Code",
			Description:  utils.StringPtr("Storage and handling of flammable liquids"),
			Category:     "hazardous_materials",
			KeyRequirements: []string{
				"Flammable liquids in approved cabinets",
				"Maximum 25 gallons in work areas",
				"Proper labeling and signage",
				"Grounding and bonding required",
				"Spill containment and cleanup procedures",
				"Ventilation requirements",
			},
			ApplicableBuildingTypes: utils.StringPtr("industrial"),
		},
		{
			StandardCode: "BS 5266-1",
			Title:        "Emergency lighting - Code of practice",
			Description:  utils.StringPtr("Emergency lighting design and maintenance"),
			Category:     "emergency_lighting",
			KeyRequirements: []string{
				"Emergency lighting in all escape routes",
				"Minimum 0.5 lux on escape routes",
				"Exit signs illuminated",
				"Battery backup for 3 hours minimum",
				"Monthly testing required",
				"Annual professional inspection",
			},
			ApplicableBuildingTypes: utils.StringPtr(all),
		},
	}
}

// SeedStandards syncs the fire_standards table with Standards.
func SeedStandards(ctx context.Context, repo StandardSyncer) error {
	standards := Standards()

	fmt.Println("Starting standards sync...")
	fmt.Printf("  Seed file contains %d standards\n", len(standards))

	codes := make([]string, 0, len(standards))
	for i := range standards {
		standard := &standards[i]
		fmt.Printf("  Upserting standard: %s\n", standard.StandardCode)
		if err := repo.UpsertStandard(ctx, standard); err != nil {
			return fmt.Errorf("failed to upsert standard %s: %w", standard.StandardCode, err)
		}
		codes = append(codes, standard.StandardCode)
	}

	deleted, err := repo.DeleteStandardsNotIn(ctx, codes)
	if err != nil {
		return fmt.Errorf("failed to delete retired standards: %w", err)
	}

	fmt.Printf("\nSync complete: %d upserted, %d deleted\n", len(codes), deleted)
	return nil
}
