package docs

// @title           Family Tracking Service API
// @version         1.0
// @description     Continuous location tracking for family coordination. Ingests location samples, classifies motion, serves family member positions with freshness flags, and manages geofences and alert rules.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
