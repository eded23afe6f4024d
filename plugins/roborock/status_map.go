package roborock

var stateNames = map[int]string{
	0:   "unknown",
	1:   "starting",
	2:   "charger_disconnected",
	3:   "idle",
	4:   "remote_control_active",
	5:   "cleaning",
	6:   "returning_home",
	7:   "manual_mode",
	8:   "charging",
	9:   "charging_problem",
	10:  "paused",
	11:  "spot_cleaning",
	12:  "error",
	13:  "shutting_down",
	14:  "updating",
	15:  "docking",
	16:  "going_to_target",
	17:  "zoned_cleaning",
	18:  "segment_cleaning",
	100: "charging_complete",
	101: "device_offline",
}

func stateName(code int) string {
	if name, ok := stateNames[code]; ok {
		return name
	}
	return "unknown"
}
