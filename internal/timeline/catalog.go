package timeline

import "github.com/pable/go-sc2-metrics/internal/model"

// Catalog maps unit and structure type names to action categories.
type Catalog struct {
	Workers   map[string]bool
	Economy   map[string]bool
	Army      map[string]bool
	Tech      map[string]bool
	WithOther bool // emit unknown structures as CategoryOther instead of dropping them
}

// DefaultCatalog covers the worker types and production, supply, defense and
// tech structures of all three races.
func DefaultCatalog() Catalog {
	return Catalog{
		Workers: setOf("SCV", "Probe", "Drone"),
		Economy: setOf(
			"SupplyDepot", "Refinery", "CommandCenter", "OrbitalCommand",
			"Nexus", "Pylon", "Assimilator",
			"Hatchery", "Extractor",
		),
		Army: setOf(
			"Barracks", "Factory", "Starport", "Bunker", "MissileTurret", "PlanetaryFortress",
			"Gateway", "WarpGate", "RoboticsFacility", "Stargate", "PhotonCannon", "ShieldBattery",
			"SpawningPool", "RoachWarren", "HydraliskDen", "Spire", "SpineCrawler", "SporeCrawler",
		),
		Tech: setOf(
			"EngineeringBay", "GhostAcademy", "FusionCore", "Armory", "StarportReactor",
			"BarracksReactor", "FactoryTechLab", "FactoryReactor", "TechLab", "SensorTower",
			"BarracksTechLab", "StarportTechLab",
			"Forge", "CyberneticsCore", "TwilightCouncil", "RoboticsBay", "FleetBeacon",
			"TemplarArchive", "DarkShrine",
			"EvolutionChamber", "BanelingNest", "InfestationPit", "UltraliskCavern", "NydusNetwork",
			"Lair", "Hive", "GreaterSpire", "LurkerDenMP",
		),
	}
}

// Override replaces the structure sets that are non-empty in the arguments.
func (c Catalog) Override(workers, economy, army, tech []string) Catalog {
	if len(workers) > 0 {
		c.Workers = setOf(workers...)
	}
	if len(economy) > 0 {
		c.Economy = setOf(economy...)
	}
	if len(army) > 0 {
		c.Army = setOf(army...)
	}
	if len(tech) > 0 {
		c.Tech = setOf(tech...)
	}
	return c
}

// structure returns the category of a placed structure. ok is false when the
// type is in none of the sets and WithOther is off.
func (c Catalog) structure(typeName string) (cat model.Category, ok bool) {
	switch {
	case c.Economy[typeName]:
		return model.CategoryEconomy, true
	case c.Army[typeName]:
		return model.CategoryArmy, true
	case c.Tech[typeName]:
		return model.CategoryTech, true
	case c.WithOther:
		return model.CategoryOther, true
	}
	return 0, false
}

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
