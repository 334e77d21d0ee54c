package geo

import "github.com/akozadaev/go_service_finder/internal/models"

func city(name string, lat, lon float64) models.City {
	return models.City{Name: name, Coordinates: models.GeoPoint{Lat: lat, Lon: lon}}
}

func locality(name, parent string, lat, lon float64) models.City {
	c := city(name, lat, lon)
	c.Parent = parent
	return c
}

// DefaultCities - встроенный справочник. Районы идут первыми, чтобы в запросе
// "Madhapur, Hyderabad" район определялся раньше города.
func DefaultCities() []models.City {
	return []models.City{
		locality("Madhapur", "Hyderabad", 17.4483, 78.3915),
		locality("Gachibowli", "Hyderabad", 17.4401, 78.3489),
		locality("Kondapur", "Hyderabad", 17.4700, 78.3570),
		locality("Jubilee Hills", "Hyderabad", 17.4326, 78.4071),
		locality("Banjara Hills", "Hyderabad", 17.4156, 78.4347),
		locality("Kukatpally", "Hyderabad", 17.4948, 78.3996),
		locality("Miyapur", "Hyderabad", 17.4968, 78.3614),
		locality("Begumpet", "Hyderabad", 17.4447, 78.4664),
		locality("Hitech City", "Hyderabad", 17.4435, 78.3772),
		city("Secunderabad", 17.4399, 78.4983),

		city("Navi Mumbai", 19.0330, 73.0297),
		city("Hyderabad", 17.3850, 78.4867),
		city("Mumbai", 19.0760, 72.8777),
		city("Delhi", 28.6139, 77.2090),
		city("Bangalore", 12.9716, 77.5946),
		city("Chennai", 13.0827, 80.2707),
		city("Kolkata", 22.5726, 88.3639),
		city("Pune", 18.5204, 73.8567),
		city("Ahmedabad", 23.0225, 72.5714),
		city("Jaipur", 26.9124, 75.7873),
		city("Lucknow", 26.8467, 80.9462),
		city("Kanpur", 26.4499, 80.3319),
		city("Nagpur", 21.1458, 79.0882),
		city("Indore", 22.7196, 75.8577),
		city("Thane", 19.2183, 72.9781),
		city("Bhopal", 23.2599, 77.4126),
		city("Visakhapatnam", 17.6868, 83.2185),
		city("Patna", 25.5941, 85.1376),
		city("Vadodara", 22.3072, 73.1812),
		city("Ghaziabad", 28.6692, 77.4538),
		city("Ludhiana", 30.9010, 75.8573),
		city("Agra", 27.1767, 78.0081),
		city("Nashik", 19.9975, 73.7898),
		city("Faridabad", 28.4089, 77.3178),
		city("Meerut", 28.9845, 77.7064),
		city("Rajkot", 22.3039, 70.8022),
		city("Kalyan", 19.2437, 73.1355),
		city("Vasai", 19.4909, 72.8152),
		city("Varanasi", 25.3176, 82.9739),
		city("Srinagar", 34.0837, 74.7973),
		city("Aurangabad", 19.8762, 75.3433),
		city("Dhanbad", 23.7957, 86.4304),
		city("Amritsar", 31.6340, 74.8723),
		city("Allahabad", 25.4358, 81.8463),
		city("Ranchi", 23.3441, 85.3096),
		city("Howrah", 22.5958, 88.2636),
		city("Coimbatore", 11.0168, 76.9558),
		city("Jabalpur", 23.1815, 79.9864),
		city("Gwalior", 26.2183, 78.1828),
		city("Vijayawada", 16.5062, 80.6480),
		city("Jodhpur", 26.2389, 73.0243),
		city("Madurai", 9.9252, 78.1198),
		city("Raipur", 21.2514, 81.6296),
		city("Kota", 25.2138, 75.8648),
		city("Guntur", 16.3067, 80.4365),
		city("Bhubaneswar", 20.2961, 85.8245),
		city("Dehradun", 30.3165, 78.0322),
		city("Asansol", 23.6739, 86.9524),
		city("Nellore", 14.4426, 79.9865),
		city("Jammu", 32.7266, 74.8570),
		city("Belagavi", 15.8497, 74.4977),
		city("Rourkela", 22.2604, 84.8536),
		city("Mangaluru", 12.9141, 74.8560),
		city("Tirunelveli", 8.7139, 77.7567),
		city("Malegaon", 20.5579, 74.5287),
		city("Gaya", 24.7914, 85.0002),
	}
}
