package camperpack

// Seed populates a fresh store with the default packing templates and
// storage locations. It is a no-op once any template exists, so calling
// it on every startup is safe. Seeded records bypass the change queue:
// every device seeds the same ids, so syncing them would only churn.
func (c *Client) Seed() error {
	templates, err := c.store.GetAll(KindTemplates)
	if err != nil {
		return err
	}
	if len(templates) > 0 {
		return nil
	}

	for _, tpl := range defaultTemplates() {
		rec, err := ToRecord(&tpl)
		if err != nil {
			return err
		}
		if _, err := c.store.Put(KindTemplates, rec, false); err != nil {
			return err
		}
	}

	for _, loc := range defaultLocations() {
		rec, err := ToRecord(&loc)
		if err != nil {
			return err
		}
		if _, err := c.store.Put(KindLocations, rec, false); err != nil {
			return err
		}
	}

	return nil
}

func defaultTemplates() []Template {
	return []Template{
		{ID: "weekend", Name: "Weekend Trip", DurationDays: 3, TripType: "weekend", ClothingMultiplier: 1.0, Notes: "Short 2-3 day trip"},
		{ID: "week", Name: "Week Trip", DurationDays: 7, TripType: "week", ClothingMultiplier: 0.8, Notes: "5-7 day trip with laundry option"},
		{ID: "extended", Name: "Extended Stay", DurationDays: 14, TripType: "extended", ClothingMultiplier: 0.5, Notes: "2+ weeks with laundry facilities"},
		{ID: "day", Name: "Day Trip", DurationDays: 1, TripType: "day", ClothingMultiplier: 0.0, Notes: "No overnight stay"},
		{ID: "special", Name: "Special Event", DurationDays: 4, TripType: "special", ClothingMultiplier: 1.0, Notes: "Festival, gathering, or special occasion"},
	}
}

func defaultLocations() []Location {
	return []Location{
		{ID: "pass_thru_main", Name: "Pass-thru main", Area: "trailer", SortOrder: 1},
		{ID: "pass_thru_small", Name: "Pass-thru small", Area: "trailer", SortOrder: 2},
		{ID: "pantry", Name: "Pantry", Area: "trailer", SortOrder: 3},
		{ID: "kitchen_overhead", Name: "Kitchen overhead", Area: "trailer", SortOrder: 4},
		{ID: "tv_cabinet", Name: "TV cabinet", Area: "trailer", SortOrder: 5},
		{ID: "under_table", Name: "Under table", Area: "trailer", SortOrder: 6},
		{ID: "kitchen_drawer_1", Name: "Kitchen drawer 1", Area: "trailer", SortOrder: 7},
		{ID: "kitchen_drawer_2", Name: "Kitchen drawer 2", Area: "trailer", SortOrder: 8},
		{ID: "kitchen_drawer_3", Name: "Kitchen drawer 3", Area: "trailer", SortOrder: 9},
		{ID: "kitchen_drawer_4", Name: "Kitchen drawer 4", Area: "trailer", SortOrder: 10},
		{ID: "under_sink", Name: "Under sink", Area: "trailer", SortOrder: 11},
		{ID: "kitchen_counter", Name: "Kitchen counter", Area: "trailer", SortOrder: 12},
		{ID: "in_sink", Name: "In sink", Area: "trailer", SortOrder: 13},
		{ID: "fridge", Name: "Fridge", Area: "trailer", SortOrder: 14},
		{ID: "key_hooks", Name: "Key hooks", Area: "trailer", SortOrder: 15},
		{ID: "wall_hooks", Name: "Wall hooks", Area: "trailer", SortOrder: 16},
		{ID: "bathroom_cabinet", Name: "Bathroom cabinet", Area: "trailer", SortOrder: 17},
		{ID: "medicine_cabinet", Name: "Medicine cabinet", Area: "trailer", SortOrder: 18},
		{ID: "shower", Name: "Shower", Area: "trailer", SortOrder: 19},
		{ID: "left_bedside", Name: "Left bedside", Area: "trailer", SortOrder: 20},
		{ID: "right_bedside", Name: "Right bedside", Area: "trailer", SortOrder: 21},
		{ID: "under_bed", Name: "Under bed", Area: "trailer", SortOrder: 22},
		{ID: "console", Name: "Console", Area: "truck", SortOrder: 30},
		{ID: "glove_compartment", Name: "Glove compartment", Area: "truck", SortOrder: 31},
		{ID: "front_cab", Name: "Front cab", Area: "truck", SortOrder: 32},
		{ID: "rear_pockets", Name: "Rear pockets", Area: "truck", SortOrder: 33},
		{ID: "rear_under_seat", Name: "Rear under seat", Area: "truck", SortOrder: 34},
		{ID: "rear_seat", Name: "Rear seat", Area: "truck", SortOrder: 35},
		{ID: "truck_bed", Name: "Truck bed", Area: "truck", SortOrder: 36},
		{ID: "bed_trunk", Name: "Bed trunk", Area: "truck", SortOrder: 37},
		{ID: "house", Name: "House (pack before trip)", Area: "house", SortOrder: 50},
	}
}
