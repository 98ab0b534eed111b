package ranking

import (
	"fmt"
	"strings"
)

// Country is appended to every address suffix.
const Country = "España"

// NationalSuffix scopes destinations to the whole country.
const NationalSuffix = ", " + Country

// Regions are the autonomous communities and cities a search can be
// scoped to.
var Regions = []string{
	"Andalucía", "Aragón", "Asturias", "Baleares", "Canarias", "Cantabria",
	"Castilla-La Mancha", "Castilla y León", "Cataluña", "Comunidad Valenciana",
	"Extremadura", "Galicia", "La Rioja", "Madrid", "Murcia", "Navarra",
	"País Vasco", "Ceuta", "Melilla",
}

// SuffixForRegion returns the address suffix for region, e.g.
// ", Aragón, España". An empty region yields NationalSuffix. Matching is
// case-insensitive; unknown regions are rejected with ErrInvalidQuery.
func SuffixForRegion(region string) (string, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return NationalSuffix, nil
	}
	for _, r := range Regions {
		if strings.EqualFold(r, region) {
			return ", " + r + NationalSuffix, nil
		}
	}
	return "", fmt.Errorf("%w: unknown region %q", ErrInvalidQuery, region)
}

// CleanNames trims every line and removes blank ones, preserving order.
func CleanNames(lines []string) []string {
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}
